package main

type T struct {
	f string
	g *T
}

var global *T

func id(x *T) *T { return x }

func main() {
	a := &T{}
	b := id(a)
	if b.f == "" {
		b.f = "x"
	}
	global = b
	println(b.f)
}
