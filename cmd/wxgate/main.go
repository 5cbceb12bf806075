// Package main is the entry point for wxgate.
package main

func main() {
	Execute()
}
