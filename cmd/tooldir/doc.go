// Package main wires together the tool directory API server binary.
package main
