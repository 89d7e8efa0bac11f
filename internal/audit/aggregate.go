package audit

import (
	"sort"

	"github.com/google/mweb-analysis-tools/internal/model"
)

// blockingThresholdMs is the long-task threshold: only the portion of a
// task beyond 50ms counts as blocking time.
const blockingThresholdMs = 50.0

// aggregate groups requests and long tasks by entity and sums their
// measurements. First-party traffic (same registrable domain as the page)
// and unattributable entries are excluded; everything else produces exactly
// one sample per entity. Samples are ordered by blocking time, then
// transfer size, then name, so a given page measurement always serializes
// the same way.
func aggregate(pageURL string, requests []requestRecord, tasks []longTask) []model.EntitySample {
	pageDomain := registrableDomain(pageURL)

	index := make(map[string]int)
	var samples []model.EntitySample

	bucket := func(name string) *model.EntitySample {
		if i, ok := index[name]; ok {
			return &samples[i]
		}
		samples = append(samples, model.EntitySample{Entity: name})
		index[name] = len(samples) - 1
		return &samples[len(samples)-1]
	}

	for _, req := range requests {
		domain := registrableDomain(req.url)
		if domain == "" || domain == pageDomain {
			continue
		}
		bucket(entityName(domain)).TransferSize += req.bytes
	}

	for _, task := range tasks {
		if task.Src == "" {
			continue
		}
		domain := registrableDomain(task.Src)
		if domain == "" || domain == pageDomain {
			continue
		}
		b := bucket(entityName(domain))
		b.MainThreadTime += task.Duration
		if task.Duration > blockingThresholdMs {
			b.BlockingTime += task.Duration - blockingThresholdMs
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].BlockingTime != samples[j].BlockingTime {
			return samples[i].BlockingTime > samples[j].BlockingTime
		}
		if samples[i].TransferSize != samples[j].TransferSize {
			return samples[i].TransferSize > samples[j].TransferSize
		}
		return samples[i].Entity < samples[j].Entity
	})

	return samples
}
