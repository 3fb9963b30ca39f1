package standards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const fallbackSlug = "standard"

// uniqueSlug derives a slug from base and appends -1, -2, ... until it no
// longer collides with any standard in the space.
func (s *Service) uniqueSlug(ctx context.Context, spaceID uuid.UUID, base string) (string, error) {
	base = slug.Make(base)
	if base == "" {
		base = fallbackSlug
	}
	existing, err := s.standards.ListBySpace(ctx, spaceID)
	if err != nil {
		return "", fmt.Errorf("failed to list standards for slug check: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, standard := range existing {
		taken[standard.Slug] = struct{}{}
	}
	candidate := base
	for i := 1; ; i++ {
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
