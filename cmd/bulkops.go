package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talkincode/qsadmin/internal/utils"
	"github.com/talkincode/qsadmin/pkg/audit"
	"github.com/talkincode/qsadmin/pkg/bulk"
	"github.com/talkincode/qsadmin/pkg/session"
)

// parseIDs turns positional args into entity ids.
func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// confirm asks on stdin unless the operator already passed --yes.
func confirm(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// runBulkMutation is the shared driver for every multi-entity mutation:
// select the ids, run one call per id without fail-fast, print the success
// count and every individual failure, record successes in the session audit
// trail, and clear the selection whatever the outcome.
func runBulkMutation(sess *session.Session, set *session.SelectionSet, operation string, ids []uint64, workers int, op bulk.Op) bulk.Result {
	for _, id := range ids {
		set.Add(id)
	}

	result := bulk.Run(set.IDs(), workers, op)

	failed := make(map[uint64]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.ID] = true
	}
	for _, id := range set.IDs() {
		if failed[id] {
			continue
		}
		if err := sess.Audit.Record(audit.Entry{
			Timestamp: time.Now(),
			Operation: operation,
			TargetID:  id,
			Outcome:   "ok",
		}); err != nil {
			utils.Log.Warn("audit record failed: ", err)
		}
	}

	set.Clear()

	fmt.Printf("%d of %d succeeded\n", result.SuccessCount, result.SuccessCount+len(result.Failures))
	for _, f := range result.Failures {
		if f.Err.Status == 0 {
			fmt.Printf("  id %d failed: %s\n", f.ID, f.Err.Message)
		} else {
			fmt.Printf("  id %d failed: HTTP %d %s\n", f.ID, f.Err.Status, f.Err.Message)
		}
	}
	return result
}
