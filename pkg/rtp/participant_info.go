package rtp

// ParticipantInfo holds the SDES-derived identity of a participant. Updates
// are monotonic with respect to CNAME: once set to a non-empty value it is
// never cleared by a later chunk that omits it (RFC 3550 §6.5.1 treats CNAME
// as the one mandatory, stable identifier for a source across SSRC changes).
type ParticipantInfo struct {
	SSRC     SSRC
	CNAME    string
	Name     string
	Email    string
	Phone    string
	Location string
	Tool     string
	Note     string
}

// UpdateFromSdesChunk applies chunk's items to info and reports whether any
// field actually changed.
func (info *ParticipantInfo) UpdateFromSdesChunk(chunk SdesChunk) bool {
	changed := false
	for _, item := range chunk.Items {
		switch item.Kind {
		case SdesCNAME:
			if item.Value != "" && item.Value != info.CNAME {
				info.CNAME = item.Value
				changed = true
			}
		case SdesNAME:
			if item.Value != info.Name {
				info.Name = item.Value
				changed = true
			}
		case SdesEMAIL:
			if item.Value != info.Email {
				info.Email = item.Value
				changed = true
			}
		case SdesPHONE:
			if item.Value != info.Phone {
				info.Phone = item.Value
				changed = true
			}
		case SdesLOC:
			if item.Value != info.Location {
				info.Location = item.Value
				changed = true
			}
		case SdesTOOL:
			if item.Value != info.Tool {
				info.Tool = item.Value
				changed = true
			}
		case SdesNOTE:
			if item.Value != info.Note {
				info.Note = item.Value
				changed = true
			}
		}
	}
	return changed
}
