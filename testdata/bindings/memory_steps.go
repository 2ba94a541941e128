package steps

// Memory steps only apply to scenarios tagged @memory or to the Memory feature.
//
//stepbind:binding
//stepbind:scope tag=memory
//stepbind:scope feature="Memory"
type MemorySteps struct {
	value int
}

//stepbind:given the memory is empty
func (m *MemorySteps) Empty() {}

//stepbind:when I press memory store
func (m *MemorySteps) Store() {}

//stepbind:then the memory should hold (\d+)
//stepbind:scope scenario="Store a value"
func (m *MemorySteps) ShouldHold(v uint) {}

//stepbind:scope
//stepbind:given the values (.*)
func (m *MemorySteps) Values(first string, rest ...string) {}
