package gamedata

// AbilityNameHash is the 32-bit rolling hash the client sends in place of a
// full ability name string. Seed 5381, shift-add per byte (the classic djb2
// construction the data pipeline uses for all name hashes).
func AbilityNameHash(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}
