package main

import "example.com/load/store"

func source() string { return "secret" }

func sink(s string) {}

func main() {
	s := store.New()
	s.Put(source())
	sink(s.Get())
}
