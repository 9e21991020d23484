// Package pseudonym derives stable display names for users who never set
// a profile name. The same user id always maps to the same name.
package pseudonym

import "hash/fnv"

var adjectives = []string{
	"Crimson", "Velvet", "Neon", "Golden", "Midnight", "Electric",
	"Frosted", "Scarlet", "Cobalt", "Ivory", "Obsidian", "Amber",
	"Lunar", "Blazing", "Silent", "Radiant", "Shadow", "Pastel",
	"Vintage", "Mirror", "Hollow", "Prism", "Echo", "Satin",
}

var nouns = []string{
	"Falcon", "Lynx", "Heron", "Fox", "Panther", "Sparrow",
	"Otter", "Raven", "Tiger", "Swan", "Viper", "Wolf",
	"Magpie", "Koi", "Ibis", "Jaguar", "Crane", "Gecko",
	"Moth", "Orca", "Puma", "Stork", "Finch", "Mantis",
}

// ForUser returns the deterministic pseudonym for a user id.
func ForUser(userID string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	sum := h.Sum64()

	adj := adjectives[sum%uint64(len(adjectives))]
	noun := nouns[(sum/uint64(len(adjectives)))%uint64(len(nouns))]
	return adj + " " + noun
}
