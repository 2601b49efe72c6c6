package palm

// epochDelta is the offset in seconds between the two timestamp origins
// found in the wild for this family of containers: the Palm OS origin
// (1904-01-01) and the Unix origin (1970-01-01).
const epochDelta = (66*365 + 17) * 86400

// normalizeEpoch maps a raw header timestamp onto Unix seconds. Values at
// or above epochDelta are taken as 1904-based and shifted; smaller values
// come from producers that already wrote Unix seconds and pass unchanged.
// The heuristic is lossy near the boundary and is kept as-is.
func normalizeEpoch(raw uint32) int64 {
	if int64(raw) >= epochDelta {
		return int64(raw) - epochDelta
	}
	return int64(raw)
}
