package main

type T struct {
	f string
	g *T
}

func source() string { return "secret" }

func sink(s string) {}

func id(x *T) *T { return x }

func main() {
	obj := &T{}
	obj2 := id(obj)
	obj.f = source() // @Source(alias)
	local2 := obj2.f
	sink(local2) // @Sink(alias)
	nested()
}

func nested() {
	inner := &T{}
	outer := &T{g: inner}
	p := outer.g
	inner.f = source() // @Source(nested)
	sink(p.f)          // @Sink(nested)
}
