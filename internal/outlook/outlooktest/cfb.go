// Package outlooktest собирает небольшие .msg-файлы (CFB версии 3) для тестов.
package outlooktest

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096
	fatPerSector   = sectorSize / 4
	dirPerSector   = sectorSize / 128
	headerDIFATs   = 109

	freeSect   uint32 = 0xFFFFFFFF
	endOfChain uint32 = 0xFFFFFFFE
	fatSect    uint32 = 0xFFFFFFFD
	noStream   uint32 = 0xFFFFFFFF

	typeStorage byte = 0x1
	typeStream  byte = 0x2
	typeRoot    byte = 0x5
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Stream — поток внутри CFB. Path разделяет хранилища через "/".
type Stream struct {
	Path string
	Data []byte
}

type node struct {
	name     string
	storage  bool
	data     []byte
	children []*node

	id    uint32
	start uint32
	size  uint32
}

func (n *node) child(name string, storage bool) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	c := &node{name: name, storage: storage}
	n.children = append(n.children, c)
	return c
}

// BuildCFB собирает compound file с переданными потоками. Потоки меньше
// 4096 байт кладутся в мини-поток, остальные — в обычные сектора.
func BuildCFB(streams []Stream) []byte {
	root := &node{name: "Root Entry", storage: true}
	for _, s := range streams {
		parts := strings.Split(s.Path, "/")
		parent := root
		for _, dir := range parts[:len(parts)-1] {
			parent = parent.child(dir, true)
		}
		parent.child(parts[len(parts)-1], false).data = s.Data
	}

	var entries []*node
	var walk func(n *node)
	walk = func(n *node) {
		n.id = uint32(len(entries))
		entries = append(entries, n)
		sort.Slice(n.children, func(i, j int) bool { return lessName(n.children[i].name, n.children[j].name) })
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	var (
		mini    []byte
		miniFAT []uint32
		large   []*node
	)
	for _, n := range entries[1:] {
		if n.storage {
			continue
		}
		n.size = uint32(len(n.data))
		switch {
		case len(n.data) == 0:
			n.start = endOfChain
		case len(n.data) >= miniCutoff:
			large = append(large, n)
		default:
			count := ceilDiv(len(n.data), miniSectorSize)
			n.start = uint32(len(miniFAT))
			miniFAT = appendChain(miniFAT, n.start, count)
			mini = append(mini, padTo(n.data, miniSectorSize)...)
		}
	}

	dirSectors := ceilDiv(len(entries), dirPerSector)
	miniFATSectors := ceilDiv(len(miniFAT), fatPerSector)
	miniStreamSectors := ceilDiv(len(mini), sectorSize)
	largeSectors := 0
	for _, n := range large {
		largeSectors += ceilDiv(len(n.data), sectorSize)
	}
	nonFAT := dirSectors + miniFATSectors + miniStreamSectors + largeSectors
	fatSectors := ceilDiv(nonFAT, fatPerSector-1)
	if fatSectors > headerDIFATs {
		panic("outlooktest: compound file too large")
	}

	fat := make([]uint32, 0, fatSectors*fatPerSector)
	for i := 0; i < fatSectors; i++ {
		fat = append(fat, fatSect)
	}

	next := uint32(fatSectors)
	dirStart := next
	fat = appendChain(fat, dirStart, dirSectors)
	next += uint32(dirSectors)

	miniFATStart := endOfChain
	if miniFATSectors > 0 {
		miniFATStart = next
		fat = appendChain(fat, miniFATStart, miniFATSectors)
		next += uint32(miniFATSectors)
	}

	root.start = endOfChain
	root.size = uint32(len(mini))
	if miniStreamSectors > 0 {
		root.start = next
		fat = appendChain(fat, root.start, miniStreamSectors)
		next += uint32(miniStreamSectors)
	}

	for _, n := range large {
		count := ceilDiv(len(n.data), sectorSize)
		n.start = next
		fat = appendChain(fat, n.start, count)
		next += uint32(count)
	}

	for len(fat) < fatSectors*fatPerSector {
		fat = append(fat, freeSect)
	}
	for len(miniFAT) < miniFATSectors*fatPerSector {
		miniFAT = append(miniFAT, freeSect)
	}

	out := header(fatSectors, dirStart, miniFATStart, miniFATSectors)
	out = append(out, uint32s(fat)...)
	out = append(out, directory(entries, dirSectors)...)
	out = append(out, uint32s(miniFAT)...)
	out = append(out, padTo(mini, sectorSize)...)
	for _, n := range large {
		out = append(out, padTo(n.data, sectorSize)...)
	}

	return out
}

func header(fatSectors int, dirStart, miniFATStart uint32, miniFATSectors int) []byte {
	h := make([]byte, sectorSize)
	copy(h[0:8], signature)
	binary.LittleEndian.PutUint16(h[24:], 0x003E)
	binary.LittleEndian.PutUint16(h[26:], 0x0003)
	binary.LittleEndian.PutUint16(h[28:], 0xFFFE)
	binary.LittleEndian.PutUint16(h[30:], 0x0009)
	binary.LittleEndian.PutUint16(h[32:], 0x0006)
	binary.LittleEndian.PutUint32(h[44:], uint32(fatSectors))
	binary.LittleEndian.PutUint32(h[48:], dirStart)
	binary.LittleEndian.PutUint32(h[56:], miniCutoff)
	binary.LittleEndian.PutUint32(h[60:], miniFATStart)
	binary.LittleEndian.PutUint32(h[64:], uint32(miniFATSectors))
	binary.LittleEndian.PutUint32(h[68:], endOfChain)
	for i := 0; i < headerDIFATs; i++ {
		v := freeSect
		if i < fatSectors {
			v = uint32(i)
		}
		binary.LittleEndian.PutUint32(h[76+4*i:], v)
	}
	return h
}

// directory пишет записи каталога. Дети одного хранилища связаны цепочкой
// правых соседей в порядке сравнения имён CFB.
func directory(entries []*node, sectors int) []byte {
	buf := make([]byte, sectors*sectorSize)
	for i := range sectors * dirPerSector {
		e := buf[i*128 : (i+1)*128]
		binary.LittleEndian.PutUint32(e[68:], noStream)
		binary.LittleEndian.PutUint32(e[72:], noStream)
		binary.LittleEndian.PutUint32(e[76:], noStream)
	}

	right := map[uint32]uint32{}
	for _, n := range entries {
		for i := 0; i+1 < len(n.children); i++ {
			right[n.children[i].id] = n.children[i+1].id
		}
	}

	for _, n := range entries {
		e := buf[n.id*128 : (n.id+1)*128]

		name := utf16.Encode([]rune(n.name))
		for i, c := range name {
			binary.LittleEndian.PutUint16(e[i*2:], c)
		}
		binary.LittleEndian.PutUint16(e[64:], uint16((len(name)+1)*2))

		switch {
		case n.id == 0:
			e[66] = typeRoot
		case n.storage:
			e[66] = typeStorage
		default:
			e[66] = typeStream
		}
		e[67] = 0x01

		if r, ok := right[n.id]; ok {
			binary.LittleEndian.PutUint32(e[72:], r)
		}
		if len(n.children) > 0 {
			binary.LittleEndian.PutUint32(e[76:], n.children[0].id)
		}
		if n.id == 0 || !n.storage {
			binary.LittleEndian.PutUint32(e[116:], n.start)
			binary.LittleEndian.PutUint32(e[120:], n.size)
		}
	}
	return buf
}

// lessName — порядок имён в каталоге CFB: сначала длина, затем без учёта регистра.
func lessName(a, b string) bool {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	if len(ua) != len(ub) {
		return len(ua) < len(ub)
	}
	return strings.ToUpper(a) < strings.ToUpper(b)
}

func appendChain(chain []uint32, start uint32, count int) []uint32 {
	for i := 0; i < count; i++ {
		next := start + uint32(i) + 1
		if i == count-1 {
			next = endOfChain
		}
		chain = append(chain, next)
	}
	return chain
}

func uint32s(vs []uint32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return b
}

func padTo(b []byte, size int) []byte {
	out := make([]byte, ceilDiv(len(b), size)*size)
	copy(out, b)
	return out
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
