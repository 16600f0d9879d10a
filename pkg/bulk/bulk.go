package bulk

import (
	"errors"
	"sync"

	"github.com/talkincode/qsadmin/pkg/gateway"
)

// Op performs one mutation against a single entity.
type Op func(id uint64) error

// Failure attributes one failed mutation to the id it was issued for.
type Failure struct {
	ID  uint64
	Err *gateway.RemoteError
}

// Result is the aggregate outcome of one bulk invocation. Partial success is
// an expected outcome, not an error: SuccessCount plus len(Failures) always
// equals the number of ids given.
type Result struct {
	SuccessCount int
	Failures     []Failure
}

// Run invokes op once per id. One id's failure never aborts processing of
// the rest, and nothing already done is rolled back. Failures are reported
// in input order regardless of how many workers executed the calls.
func Run(ids []uint64, workers int, op Op) Result {
	outcomes := make([]*gateway.RemoteError, len(ids))

	if workers <= 1 {
		for i, id := range ids {
			outcomes[i] = asRemote(op(id))
		}
	} else {
		if workers > len(ids) {
			workers = len(ids)
		}
		indexes := make(chan int, workers)
		wg := new(sync.WaitGroup)
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range indexes {
					outcomes[i] = asRemote(op(ids[i]))
				}
			}()
		}
		for i := range ids {
			indexes <- i
		}
		close(indexes)
		wg.Wait()
	}

	var result Result
	for i, outcome := range outcomes {
		if outcome == nil {
			result.SuccessCount++
		} else {
			result.Failures = append(result.Failures, Failure{ID: ids[i], Err: outcome})
		}
	}
	return result
}

func asRemote(err error) *gateway.RemoteError {
	if err == nil {
		return nil
	}
	var re *gateway.RemoteError
	if errors.As(err, &re) {
		return re
	}
	return &gateway.RemoteError{Message: err.Error()}
}
