// Package render formats aggregation results for humans and machines.
package render
