// Package mocks provides centralized mock implementations for testing.
//
// Each mock records its calls for verification and lets a test override
// behavior through function fields or queued responses:
//
//	gen := mocks.NewMockGeneratorWithText("ADH inserts aquaporin-2 channels.")
//	svc, _ := service.NewScholarService(gen, store, logger)
//	...
//	assert.Equal(t, 1, gen.CallCount())
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Track calls behind a mutex so mocks are safe in parallel tests
package mocks
