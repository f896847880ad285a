// Package httputil provides shared HTTP response utilities for the ops API.
//
// Handler files use these helpers instead of writing raw http.ResponseWriter
// calls, so every endpoint returns the same JSON envelope and error shape.
package httputil
