package main

type T struct {
	f string
	g *T
}

var global *T

func source() string { return "secret" }

func sink(s string) {}

func id(x *T) *T { return x }

func pair(x *T) (*T, int) { return x, 0 }

func main() {
	obj := &T{}
	obj2 := id(obj)
	obj.f = source()
	local2 := obj2.f
	sink(local2)
}

func viaGlobal() {
	a := &T{}
	global = a
	b := global
	a.f = source()
	sink(b.f)
}

func viaField() {
	a := &T{}
	holder := &T{}
	holder.g = a
	c := holder.g
	a.f = source()
	sink(c.f)
}

func viaTuple() {
	a := &T{}
	b, _ := pair(a)
	a.f = source()
	sink(b.f)
}

func deep() {
	a := &T{}
	h := &T{g: &T{}}
	x := h.g
	x.g = a
	a.f = source()
	sink(h.g.g.f)
}

func viaParam(p *T) {
	p.f = source()
}

func callsViaParam() {
	t := &T{}
	viaParam(t)
	sink(t.f)
}

func mk() *T {
	r := &T{}
	r.f = source()
	return r
}

func useMk() {
	a := mk()
	sink(a.f)
}
