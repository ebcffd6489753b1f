package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tabbed/pqtype"
)

const taskColumns = `id, company_id, structured_lead_id, task_type, status, instance_id, result_data, created_at, updated_at`

var (
	queryTaskGet = fmt.Sprintf(`select %s from tasks where id = $1`, taskColumns)
	queryTaskAdd = `
		insert into tasks (
			company_id, structured_lead_id, task_type, status, instance_id, result_data, created_at, updated_at
		) values (
			$1, $2, $3, 'pending', null, $4, $5, $5
		)`
	queryTaskSetStatus = `update tasks set status = $1, updated_at = $2 where id = $3`
	queryTaskSetResult = `update tasks set status = $1, result_data = $2, updated_at = $3 where id = $4`
	queryTaskReset     = `update tasks set status = 'pending', updated_at = $1 where id = $2`
	queryResetByStatus = `update tasks set status = 'pending', updated_at = $1 where status = $2`
	queryTaskDelete    = `delete from tasks where id = $1`
	queryDeleteCompany = `delete from tasks where company_id = $1`
	queryDeleteLead    = `delete from tasks where structured_lead_id = $1`

	queryEligible = fmt.Sprintf(
		`select id from tasks
		where status = 'pending' or (status = 'in_progress' and updated_at < $1)
		order by %s, id limit 16`, typePriority)
	queryClaimCAS = `
		update tasks set status = 'in_progress', instance_id = $1, updated_at = $2
		where id = $3 and (status = 'pending' or (status = 'in_progress' and updated_at < $4))`
	queryClaimSkipLocked = fmt.Sprintf(`
		with candidate as (
			select id from tasks
			where status = 'pending' or (status = 'in_progress' and updated_at < $1)
			order by %s, id
			limit 1
			for update skip locked
		)
		update tasks t set status = 'in_progress', instance_id = $2, updated_at = $3
		from candidate c where t.id = c.id
		returning t.id, t.company_id, t.structured_lead_id, t.task_type, t.status, t.instance_id, t.result_data, t.created_at, t.updated_at`,
		typePriority)
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type AddParams struct {
	CompanyID        sql.NullInt64
	StructuredLeadID sql.NullInt64
	Type             string
	Result           *ResultData
}

// Filter selects tasks by any combination of company, lead, type and status.
// Zero-valued fields are ignored.
type Filter struct {
	CompanyID        int64
	StructuredLeadID int64
	Type             string
	Status           string
}

// CompanyRef wraps a company id for the nullable task column.
func CompanyRef(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func (q *Queries) Add(ctx context.Context, arg AddParams) (*Task, error) {
	var rd pqtype.NullRawMessage
	if arg.Result != nil {
		var err error
		rd, err = arg.Result.marshal()
		if err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()

	if q.dialect == dialectPostgres {
		var id int64
		err := q.db.QueryRowContext(
			ctx, queryTaskAdd+" returning id",
			arg.CompanyID, arg.StructuredLeadID, arg.Type, rd, now,
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		return q.Get(ctx, id)
	}

	res, err := q.db.ExecContext(ctx, queryTaskAdd, arg.CompanyID, arg.StructuredLeadID, arg.Type, rd, now)
	if err != nil {
		return nil, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return q.Get(ctx, lastID)
}

func (q *Queries) Get(ctx context.Context, id int64) (*Task, error) {
	row := q.db.QueryRowContext(ctx, queryTaskGet, id)
	i, err := scan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (q *Queries) List(ctx context.Context, f Filter) ([]*Task, error) {
	var (
		conds []string
		args  []interface{}
	)
	next := func() string { return fmt.Sprintf("$%d", len(args)) }
	if f.CompanyID != 0 {
		args = append(args, f.CompanyID)
		conds = append(conds, "company_id = "+next())
	}
	if f.StructuredLeadID != 0 {
		args = append(args, f.StructuredLeadID)
		conds = append(conds, "structured_lead_id = "+next())
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, "task_type = "+next())
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, "status = "+next())
	}
	query := fmt.Sprintf(`select %s from tasks`, taskColumns)
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ts []*Task
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, &i)
	}
	return ts, rows.Err()
}

func (q *Queries) SetStatus(ctx context.Context, id int64, status string) error {
	return q.exec1(ctx, queryTaskSetStatus, status, time.Now().UTC(), id)
}

// Complete marks the task done and stores its result payload.
func (q *Queries) Complete(ctx context.Context, id int64, rd ResultData) error {
	raw, err := rd.marshal()
	if err != nil {
		return err
	}
	return q.exec1(ctx, queryTaskSetResult, StatusCompleted, raw, time.Now().UTC(), id)
}

// Fail marks the task failed, replacing its result payload with the error.
func (q *Queries) Fail(ctx context.Context, id int64, msg string) error {
	raw, err := ResultData{Error: msg}.marshal()
	if err != nil {
		return err
	}
	return q.exec1(ctx, queryTaskSetResult, StatusFailed, raw, time.Now().UTC(), id)
}

// Reset puts a task back to pending. Administrative, not part of normal flow.
func (q *Queries) Reset(ctx context.Context, id int64) error {
	return q.exec1(ctx, queryTaskReset, time.Now().UTC(), id)
}

// ResetByStatus bulk-resets failed or in_progress tasks to pending and
// returns the number of tasks touched.
func (q *Queries) ResetByStatus(ctx context.Context, from string) (int64, error) {
	if from != StatusFailed && from != StatusInProgress {
		return 0, fmt.Errorf("cannot reset tasks from status %q", from)
	}
	res, err := q.db.ExecContext(ctx, queryResetByStatus, time.Now().UTC(), from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) Delete(ctx context.Context, id int64) error {
	return q.exec1(ctx, queryTaskDelete, id)
}

func (q *Queries) DeleteForCompany(ctx context.Context, companyID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, queryDeleteCompany, companyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteForLead(ctx context.Context, leadID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, queryDeleteLead, leadID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) exec1(ctx context.Context, query string, args ...interface{}) error {
	r, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %v not found", args[len(args)-1])
	}
	return nil
}

func scan(r rowScanner) (Task, error) {
	var i Task
	if err := r.Scan(
		&i.ID,
		&i.CompanyID,
		&i.StructuredLeadID,
		&i.Type,
		&i.Status,
		&i.InstanceID,
		&i.ResultData,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		return i, err
	}
	return i, nil
}
