package analysis

import (
	"context"
	"fmt"

	"github.com/Cavedragon13/ai-image-organizer/internal/naming"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// MiscGroupName is the catch-all group for clusters smaller than the minimum group size.
const MiscGroupName = "misc_singles"

// Grouper partitions image records into named groups by description similarity.
type Grouper struct {
	embedder models.Embedder
}

// NewGrouper creates a Grouper that embeds descriptions with e.
func NewGrouper(e models.Embedder) *Grouper {
	return &Grouper{embedder: e}
}

// Group clusters records whose description embeddings are at least threshold
// similar to a cluster's seed. Every record lands in exactly one returned group.
//
// Clustering is star-shaped: each unclaimed record in input order seeds a
// cluster and claims every later unclaimed record similar to the seed itself,
// not to other members. Clusters with at least minGroupSize members become
// named groups in discovery order; the rest are pooled into MiscGroupName,
// which is always last and omitted when empty.
func (g *Grouper) Group(ctx context.Context, records []models.ImageRecord, threshold float64, minGroupSize int) ([]models.Group, error) {
	if len(records) == 0 {
		return []models.Group{}, nil
	}

	vectors, err := g.embedRecords(ctx, records)
	if err != nil {
		return nil, err
	}

	claimed := make([]bool, len(records))
	var clusters [][]int
	for i := range records {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		cluster := []int{i}
		for j := i + 1; j < len(records); j++ {
			if claimed[j] {
				continue
			}
			if CosineSimilarity(vectors[i], vectors[j]) >= threshold {
				claimed[j] = true
				cluster = append(cluster, j)
			}
		}
		clusters = append(clusters, cluster)
	}

	assigned := map[string]bool{MiscGroupName: true}
	groups := make([]models.Group, 0, len(clusters))
	var misc []models.ImageRecord
	for _, cluster := range clusters {
		members := make([]models.ImageRecord, 0, len(cluster))
		for _, idx := range cluster {
			members = append(members, records[idx])
		}
		if len(members) < minGroupSize {
			misc = append(misc, members...)
			continue
		}
		name := uniqueName(clusterName(members), assigned)
		assigned[name] = true
		groups = append(groups, models.Group{Name: name, Members: members})
	}

	if len(misc) > 0 {
		groups = append(groups, models.Group{Name: MiscGroupName, Members: misc})
	}
	return groups, nil
}

// embedRecords embeds each distinct description once and returns one vector per record.
func (g *Grouper) embedRecords(ctx context.Context, records []models.ImageRecord) ([][]float64, error) {
	index := make(map[string]int)
	var distinct []string
	for _, r := range records {
		if _, ok := index[r.Description]; !ok {
			index[r.Description] = len(distinct)
			distinct = append(distinct, r.Description)
		}
	}

	embeddings, err := g.embedder.Embed(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("embedding descriptions: %w", err)
	}
	if len(embeddings) != len(distinct) {
		return nil, fmt.Errorf("%w: %d vectors for %d descriptions", ErrEmbeddingMismatch, len(embeddings), len(distinct))
	}

	dim := len(embeddings[0])
	for i, v := range embeddings {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has length %d, expected %d", ErrEmbeddingMismatch, i, len(v), dim)
		}
		if Norm(v) == 0 {
			return nil, fmt.Errorf("%w: description %q", ErrDegenerateEmbedding, distinct[i])
		}
	}

	vectors := make([][]float64, len(records))
	for i, r := range records {
		vectors[i] = embeddings[index[r.Description]]
	}
	return vectors, nil
}

func clusterName(members []models.ImageRecord) string {
	descs := make([]string, 0, len(members))
	for _, m := range members {
		descs = append(descs, m.Description)
	}
	if name := naming.GroupName(descs); name != "" {
		return name
	}
	return naming.UnknownImage
}

// uniqueName appends _1, _2, ... to base until it no longer collides.
func uniqueName(base string, assigned map[string]bool) string {
	name := base
	for n := 1; assigned[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}
