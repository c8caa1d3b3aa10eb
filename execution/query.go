package execution

import (
	"errors"
	"io"

	"mit.edu/dsg/lemurdb/catalog"
	"mit.edu/dsg/lemurdb/common"
	"mit.edu/dsg/lemurdb/storage"
)

// Query composes executors fluently. Each chaining method takes ownership of the current plan and wraps it in a
// new executor:
//
//	rows, err := execution.FromRelation(fm, ratings).
//		Selection(execution.CompareColumn(2, common.Float, execution.GreaterThanOrEqual, common.NewFloatValue(4))).
//		SimpleSort(1, common.Integer, execution.SortOrderAscending).
//		Aggregate(execution.Count, 0, common.Integer, 1).
//		Collect()
//
// A step that cannot be built (a missing relation file, an unsupported aggregate) poisons the query. Later steps
// are skipped, and the error is reported by Err, by Collect, or by the executor returned from Executor.
type Query struct {
	exec Executor
	err  error
}

// From starts a query at an existing executor.
func From(e Executor) *Query {
	return &Query{exec: e}
}

// FromValues starts a query at an in-memory list of tuples.
func FromValues(tuples ...storage.Tuple) *Query {
	return From(NewValuesExecutor(tuples))
}

// FromRelation starts a query at a disk scan of the relation's file.
func FromRelation(fm storage.FileManager, rel *catalog.RelationSchema) *Query {
	file, err := fm.OpenRelation(rel.Oid)
	if err != nil {
		return &Query{err: err}
	}
	scan, err := NewDiskScanExecutor(file, rel.Types())
	if err != nil {
		return &Query{err: err}
	}
	return From(scan)
}

// FromCSV starts a query at a CSV source.
func FromCSV(src io.ReadSeeker, types []common.Type, hasHeader bool) *Query {
	return From(NewCSVScanExecutor(src, types, hasHeader))
}

func (q *Query) Scan() *Query {
	if q.err != nil {
		return q
	}
	return From(NewScanExecutor(q.exec))
}

func (q *Query) Selection(predicate Predicate) *Query {
	if q.err != nil {
		return q
	}
	return From(NewSelectionExecutor(q.exec, predicate))
}

func (q *Query) Projection(columns ...int) *Query {
	if q.err != nil {
		return q
	}
	return From(NewProjectionExecutor(q.exec, columns))
}

func (q *Query) Limit(n int) *Query {
	if q.err != nil {
		return q
	}
	return From(NewLimitExecutor(q.exec, n))
}

func (q *Query) SimpleSort(column int, colType common.Type, order SortOrder) *Query {
	if q.err != nil {
		return q
	}
	return From(NewSimpleSortExecutor(q.exec, column, colType, order))
}

// Aggregate computes aggType over column. Pass NoGroupBy for a single whole-relation result.
func (q *Query) Aggregate(aggType AggregateType, column int, colType common.Type, groupBy int) *Query {
	if q.err != nil {
		return q
	}
	agg, err := NewAggregateExecutor(q.exec, aggType, column, colType, groupBy)
	if err != nil {
		return q.fail(err)
	}
	return From(agg)
}

// NestedLoopsJoin joins the query, as the outer side, with inner on leftCol = rightCol.
func (q *Query) NestedLoopsJoin(inner *Query, leftCol, rightCol int) *Query {
	switch {
	case q.err != nil && inner.err != nil:
		return &Query{err: errors.Join(q.err, inner.err)}
	case q.err != nil:
		return inner.fail(q.err)
	case inner.err != nil:
		return q.fail(inner.err)
	}
	return From(NewNestedLoopsJoinExecutor(q.exec, inner.exec, leftCol, rightCol))
}

func (q *Query) Materialize() *Query {
	if q.err != nil {
		return q
	}
	return From(NewMaterializeExecutor(q.exec))
}

// Insert writes the query's output as blocks to dest.
func (q *Query) Insert(dest io.Writer) *Query {
	if q.err != nil {
		return q
	}
	return From(NewInsertExecutor(q.exec, dest))
}

// fail closes the plan built so far and returns a query poisoned with err.
func (q *Query) fail(err error) *Query {
	if closeErr := q.exec.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return &Query{err: err}
}

// Err returns the error that stopped the query from being built, if any.
func (q *Query) Err() error {
	return q.err
}

// Executor returns the root of the plan. A poisoned query yields an executor that produces nothing and reports
// the construction error.
func (q *Query) Executor() Executor {
	if q.err != nil {
		return failedExecutor{err: q.err}
	}
	return q.exec
}

// Collect runs the query to completion, closes it and returns every tuple it produced.
func (q *Query) Collect() ([]storage.Tuple, error) {
	if q.err != nil {
		return nil, q.err
	}
	result, err := Collect(q.exec)
	if closeErr := q.exec.Close(); err == nil {
		err = closeErr
	}
	return result, err
}

type failedExecutor struct {
	err error
}

func (e failedExecutor) Next() bool {
	return false
}

func (e failedExecutor) Current() storage.Tuple {
	panic("Current called on a failed executor")
}

func (e failedExecutor) Error() error {
	return e.err
}

func (e failedExecutor) Reset() error {
	return e.err
}

func (e failedExecutor) Close() error {
	return nil
}
