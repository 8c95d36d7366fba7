// Package merge plans and executes the branch-merge sequence that
// reconciles agent worktrees back into a repository's base branch.
package merge

import (
	"fmt"

	"github.com/crossroads-cli/crossroads/internal/git"
	"github.com/crossroads-cli/crossroads/pkg/models"
)

// Coordinator merges a set of worktree assignments' branches into a base
// branch, per the configured conflict strategy.
type Coordinator struct {
	runner git.Runner
}

// New returns a Coordinator bound to the given git runner.
func New(runner git.Runner) *Coordinator {
	return &Coordinator{runner: runner}
}

// Plan builds a topologically ordered merge plan from assignments. Since
// task groups are already independent clusters by construction (see
// tasksplit), ordering here is simply assignment order; a dependency
// between two clusters would mean the task splitter failed to merge them
// into one cluster, so cross-assignment dependencies are not expected and
// Plan treats the incoming slice order as authoritative.
func Plan(assignments []models.WorktreeAssignment) []models.MergePlanStep {
	steps := make([]models.MergePlanStep, len(assignments))
	for i, a := range assignments {
		status := models.MergeStepReady
		if i > 0 {
			status = models.MergeStepPending
		}
		steps[i] = models.MergePlanStep{Assignment: a, Status: status}
	}
	return steps
}

// Coordinate merges every assignment's branch into baseBranch, in plan
// order, according to strategy. The plan built by Plan is always attached to
// the result so a caller can render it as a preview. If autoMerge is false,
// Coordinate only plans: it reports success without merging anything.
func (c *Coordinator) Coordinate(assignments []models.WorktreeAssignment, baseBranch string, strategy models.ConflictStrategy, autoMerge bool) (models.MergeResult, error) {
	result := models.MergeResult{BaseBranch: baseBranch, Plan: Plan(assignments)}

	if !autoMerge {
		result.Success = true
		return result, nil
	}

	preTip, err := c.runner.RevParse(baseBranch)
	if err != nil {
		return models.MergeResult{}, fmt.Errorf("resolve base branch tip: %w", err)
	}

	for i, a := range assignments {
		hasConflicts, mergeErr := c.mergeOne(a.BranchName)

		switch {
		case mergeErr == nil && !hasConflicts:
			result.MergedBranches = append(result.MergedBranches, a.BranchName)

		case hasConflicts:
			conflicts, filesErr := c.conflictsFor(a.BranchName)
			if filesErr != nil {
				conflicts = []models.MergeConflict{{BranchName: a.BranchName}}
			}

			switch strategy {
			case models.ConflictPreferPrimary:
				if err := c.resolvePreferPrimary(); err != nil {
					return models.MergeResult{}, err
				}
				if err := c.runner.Add("."); err != nil {
					return models.MergeResult{}, err
				}
				if err := c.runner.Commit(fmt.Sprintf("Merge %s (preferPrimary auto-resolve)", a.BranchName)); err != nil {
					return models.MergeResult{}, err
				}
				result.MergedBranches = append(result.MergedBranches, a.BranchName)

			case models.ConflictFailFast:
				_ = c.runner.MergeAbort()
				if err := c.runner.ResetHard(preTip); err != nil {
					return models.MergeResult{}, fmt.Errorf("roll back after conflict: %w", err)
				}
				result.MergedBranches = nil
				result.Conflicts = append(result.Conflicts, conflicts...)
				result.Success = false
				result.RolledBack = true
				return result, nil

			default: // manualReview
				_ = c.runner.MergeAbort()
				result.Conflicts = append(result.Conflicts, conflicts...)
				result.Plan[i].Status = models.MergeStepBlocked
			}

		default:
			return models.MergeResult{}, fmt.Errorf("merge %s into %s: %w", a.BranchName, baseBranch, mergeErr)
		}
	}

	result.Success = len(result.Conflicts) == 0
	return result, nil
}

func (c *Coordinator) mergeOne(branch string) (hasConflicts bool, err error) {
	mergeErr := c.runner.MergeNoFF(branch)
	if mergeErr == nil {
		return false, nil
	}
	conflicted, confErr := c.runner.HasConflicts()
	if confErr != nil {
		return false, mergeErr
	}
	return conflicted, mergeErr
}

func (c *Coordinator) conflictsFor(branch string) ([]models.MergeConflict, error) {
	files, err := c.runner.ConflictedFiles()
	if err != nil {
		return nil, err
	}
	out := make([]models.MergeConflict, len(files))
	for i, f := range files {
		out[i] = models.MergeConflict{BranchName: branch, FilePath: f}
	}
	return out, nil
}

// resolvePreferPrimary resolves every conflicted file in favor of "ours"
// (the branch already merged into, i.e. the first branch in assignment
// order to reach this file).
func (c *Coordinator) resolvePreferPrimary() error {
	files, err := c.runner.ConflictedFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := c.runner.CheckoutOurs(f); err != nil {
			return err
		}
		if err := c.runner.Add(f); err != nil {
			return err
		}
	}
	return nil
}
