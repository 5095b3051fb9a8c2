// Package domoticz provides an HTTP client for the Domoticz home automation
// server's JSON API.
//
// The package covers the small slice of the API a meter bridge needs: reading
// a virtual sensor's current value and pushing a new one. All calls go
// through the single /json.htm endpoint with the operation encoded in query
// parameters, which is how Domoticz structures its entire API.
//
// # Usage Example
//
//	client := domoticz.NewClient("127.0.0.1", 8080)
//
//	// Read the sensor's current value
//	value, err := client.CurrentValue(370)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Push an updated value
//	if err := client.UpdateValue(370, value+1.5); err != nil {
//	    log.Fatal(err)
//	}
//
// # API Status Handling
//
// Domoticz reports failures two ways: transport-level HTTP errors, and HTTP
// 200 responses whose JSON body carries a status other than "OK". Both
// surface as *StoreError; the latter with ErrTypeAPI. A device index that
// resolves to an empty result list is ErrTypeNotFound.
//
// # Retries
//
// Device reads and value updates retry transient failures with exponential
// backoff. Non-retryable errors (4xx statuses, parse failures, unknown
// devices) return immediately. See SetRetry to tune the policy.
//
// # Thread Safety
//
// Client instances are safe for concurrent use.
package domoticz
