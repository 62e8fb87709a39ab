// Package http provides a transport.Doer that speaks HTTP and reports
// failures as transport errors with a category.
package http
