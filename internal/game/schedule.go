package game

// Assign maps each prompt to a player for the given round. Prompt i goes to
// ids[(round+i) mod len(ids)], so the starting player shifts by one every
// round and rooms with fewer than five players hand some players several
// prompts. The result depends only on its inputs.
func Assign(ids []string, round int) map[Prompt]string {
	out := make(map[Prompt]string, len(Prompts))
	n := len(ids)
	if n == 0 {
		return out
	}
	for i, p := range Prompts {
		ix := (round + i) % n
		if ix < 0 {
			ix += n
		}
		out[p] = ids[ix]
	}
	return out
}
