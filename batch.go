package marmadetector

import (
	"context"
	"runtime"
	"sync"

	apperrors "github.com/menta2k/marma-detector/internal/errors"
	"github.com/menta2k/marma-detector/pkg/types"
)

// BatchItem is the outcome for one file of a batch run
type BatchItem struct {
	Path   string               `json:"path"`
	Result types.PipelineResult `json:"result"`
}

// DetectBatch runs DetectFile over paths on a pool of workers. Results are
// returned in input order and each file is isolated: one failing image
// never aborts the others. Files not started before ctx is cancelled are
// reported as failures. onDone, when set, is called once per finished file
// and never concurrently.
func (d *Detector) DetectBatch(ctx context.Context, paths []string, workers int, onDone func(BatchItem)) []BatchItem {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	items := make([]BatchItem, len(paths))
	jobs := make(chan int, workers*2)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				item := BatchItem{Path: paths[i]}
				if err := ctx.Err(); err != nil {
					item.Result = failureFrom(apperrors.NewInternalError("cancelled", err))
				} else {
					item.Result = d.DetectFile(paths[i])
				}
				items[i] = item

				if onDone != nil {
					mu.Lock()
					onDone(item)
					mu.Unlock()
				}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return items
}
