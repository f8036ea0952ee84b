package main

type T struct {
	f string
	g *T
}

var global *T

func source() string { return "secret" }

func sink(s string) {}

func id(x *T) *T { return x }

func set(x *T, s string) {
	x.f = s
}

func main() {
	obj := &T{}
	obj2 := id(obj)
	obj.f = source()
	local2 := obj2.f
	sink(local2)
	viaCall()
}

func viaCall() {
	a := &T{}
	set(a, source())
	b := id(a)
	sink(b.f)
}

func unreachable() {
	set(&T{}, "")
}
