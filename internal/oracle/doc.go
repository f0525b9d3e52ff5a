// Package oracle decides whether a task needs a transfer by comparing the
// remote entity tag with the local file.
//
// The oracle fails open: when it cannot decide, because of an I/O error or a
// remote lookup failure, it asks for the transfer and logs a warning.
package oracle
