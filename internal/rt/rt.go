// Package rt gives the refresh goroutine's OS thread a better chance of
// meeting its tick deadline.
package rt

// Nice is the niceness applied to the calling thread by Elevate.
const Nice = -15
