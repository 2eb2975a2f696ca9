package recommend

import "github.com/shelfmate/shelfmate/internal/domain"

// blocklist is the set of normalized titles that must never come back as a
// recommendation. Rebuilt from scratch on every request so reads and
// sessions added since the last call are always covered.
type blocklist map[string]struct{}

func buildBlocklist(reads []domain.Read, sessions []domain.RecommendationSession) blocklist {
	b := make(blocklist, len(reads))
	for _, r := range reads {
		b.add(r.Title)
	}
	for _, s := range sessions {
		for _, rec := range s.Recommendations {
			b.add(rec.Title)
		}
	}
	return b
}

func (b blocklist) add(title string) {
	b[domain.NormalizeTitle(title)] = struct{}{}
}

func (b blocklist) blocked(title string) bool {
	_, ok := b[domain.NormalizeTitle(title)]
	return ok
}
