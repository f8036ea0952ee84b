package main

type T struct {
	f string
	g *T
}

func source() string { return "secret" }

func sink(s string) {}

func id(x *T) *T { return x }

func set(x *T, s string) { x.f = s }

func main() {
	a := &T{}
	b := id(a)
	set(a, source()) // @Source(escape)
	sink(b.f)        // @Sink(escape)
}
