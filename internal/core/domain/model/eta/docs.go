// Package eta models arrival estimates: the inputs sent to the prediction oracle
// (vehicle, weather, route, clock), the estimate it returns, and the confidence
// label that tells a real prediction apart from the deterministic fallback.
package eta
