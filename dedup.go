package pixelwork

// FrameFingerprint is a pair of rolling 32-bit hashes over a sparse sample of
// the frame pixels.
type FrameFingerprint struct {
	H1, H2 uint32
}

// DuplicateInfo places a frame inside its duplicate group.
type DuplicateInfo struct {
	GroupID   int
	GroupSize int
}

// fingerprintStride samples every 4th RGBA pixel.
const fingerprintStride = 16

// Fingerprint hashes b. h1 folds the four bytes of every sampled pixel
// through h*31 + byte and h2 folds the bytes of its right neighbour through
// h*9 + byte, so identical buffers always produce identical fingerprints.
// Bytes are folded one by one: summing the channels first would make
// opaque red and opaque blue collide.
func Fingerprint(b *PixelBuffer) FrameFingerprint {
	var h1, h2 uint32
	d := b.Pix
	for i := 0; i+4 <= len(d); i += fingerprintStride {
		for _, v := range d[i : i+4] {
			h1 = (h1 << 5) - h1 + uint32(v)
		}
		if i+8 <= len(d) {
			for _, v := range d[i+4 : i+8] {
				h2 = (h2 << 3) + h2 + uint32(v)
			}
		}
	}
	// Mix in the geometry so equal samples of differently sized frames differ.
	h1 = h1*31 + uint32(b.Width)
	h2 = h2*9 + uint32(b.Height)
	return FrameFingerprint{H1: h1, H2: h2}
}

// FindDuplicates groups frames with equal fingerprints. Only frames that have
// at least one duplicate appear in the result; group IDs are assigned
// sequentially in order of first occurrence.
func FindDuplicates(frames []*PixelBuffer) map[int]DuplicateInfo {
	var order []FrameFingerprint
	classes := make(map[FrameFingerprint][]int)
	for i, f := range frames {
		fp := Fingerprint(f)
		if _, ok := classes[fp]; !ok {
			order = append(order, fp)
		}
		classes[fp] = append(classes[fp], i)
	}

	result := make(map[int]DuplicateInfo)
	groupID := 0
	for _, fp := range order {
		members := classes[fp]
		if len(members) < 2 {
			continue
		}
		for _, i := range members {
			result[i] = DuplicateInfo{GroupID: groupID, GroupSize: len(members)}
		}
		groupID++
	}
	return result
}

// DuplicateSummary counts the frames that have a duplicate and the groups
// they form.
func DuplicateSummary(dups map[int]DuplicateInfo) (frames, groups int) {
	seen := make(map[int]struct{})
	for _, d := range dups {
		seen[d.GroupID] = struct{}{}
	}
	return len(dups), len(seen)
}
