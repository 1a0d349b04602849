package chart

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

// Sample is one set of a weight training field read from an entry
type Sample struct {
	EntryID string
	Date    time.Time
	Weight  *float64
	Reps    *float64
	Sets    *float64
}

// Point is one charted session
type Point struct {
	EntryID     string    `json:"entry_id"`
	Date        time.Time `json:"date"`
	AvgWeight   float64   `json:"avg_weight"`
	TotalReps   float64   `json:"total_reps"`
	TotalWeight float64   `json:"total_weight"`
}

// Aggregate folds samples into one point per entry. Samples are taken in
// order and consecutive samples of the same entry are combined into a
// volume weighted average load. Incomplete samples, samples with no reps
// and samples whose numbers are not finite are skipped.
func Aggregate(samples []Sample) []Point {
	points := []Point{}
	for _, s := range samples {
		if s.Weight == nil || s.Reps == nil || s.Sets == nil {
			continue
		}
		reps := *s.Reps * *s.Sets
		volume := *s.Weight * reps
		if !finite(*s.Weight, reps, volume) {
			continue
		}

		if n := len(points); n > 0 && points[n-1].EntryID == s.EntryID {
			p := &points[n-1]
			totalReps, totalWeight := p.TotalReps+reps, p.TotalWeight+volume
			if !finite(totalReps, totalWeight) {
				continue
			}
			p.TotalReps, p.TotalWeight = totalReps, totalWeight
			if p.TotalReps != 0 {
				p.AvgWeight = math.Floor(p.TotalWeight / p.TotalReps)
			}
			continue
		}

		if reps == 0 {
			continue
		}
		points = append(points, Point{
			EntryID:     s.EntryID,
			Date:        s.Date,
			AvgWeight:   *s.Weight,
			TotalReps:   reps,
			TotalWeight: volume,
		})
	}
	return points
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SamplesFromEntries reads one sample from every field named fieldName on
// the instance entries, oldest entry first. Weight comes from the first
// NUMBER input labelled kg or lb; reps and sets from the inputs labelled
// accordingly.
func SamplesFromEntries(entries []models.Entry, fieldName string) []Sample {
	sorted := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Template {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var samples []Sample
	for _, e := range sorted {
		for _, f := range e.Fields {
			if !strings.EqualFold(strings.TrimSpace(f.Name), strings.TrimSpace(fieldName)) {
				continue
			}
			s := Sample{EntryID: e.ID, Date: e.CreatedAt}
			for _, in := range f.Inputs {
				nv, ok := in.Value.(models.NumberValue)
				if !ok || in.Kind != models.InputNumber || nv.Number == nil {
					continue
				}
				n := *nv.Number
				switch strings.ToLower(in.HelperText()) {
				case constants.HelperWeight, constants.HelperWeightLb:
					if s.Weight == nil {
						s.Weight = &n
					}
				case constants.HelperReps:
					s.Reps = &n
				case constants.HelperSets:
					s.Sets = &n
				}
			}
			samples = append(samples, s)
		}
	}
	return samples
}

// FieldNames lists the distinct field names on entries that carry a
// weight input, in first-seen order.
func FieldNames(entries []models.Entry) []string {
	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		for _, f := range e.Fields {
			if seen[f.Name] {
				continue
			}
			for _, in := range f.Inputs {
				h := strings.ToLower(in.HelperText())
				if in.Kind == models.InputNumber && (h == constants.HelperWeight || h == constants.HelperWeightLb) {
					seen[f.Name] = true
					names = append(names, f.Name)
					break
				}
			}
		}
	}
	return names
}
