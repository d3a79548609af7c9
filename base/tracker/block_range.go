package tracker

import "fmt"

// blockRange is an inclusive range of block numbers pending a log fetch
type blockRange struct {
	begin uint64
	end   uint64
}

// split halves the range; used when a node rejects a fetch for returning too
// many logs
func (r blockRange) split() (blockRange, blockRange) {
	mid := r.begin + (r.end-r.begin)/2
	return blockRange{r.begin, mid}, blockRange{mid + 1, r.end}
}

func (r blockRange) String() string {
	return fmt.Sprintf("blockRange{%d-%d}", r.begin, r.end)
}
