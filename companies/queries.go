package companies

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// New returns a company store over a sqlite connection.
func New(db DBTX) *Queries {
	return &Queries{db: db, dialect: dialectSQLite}
}

// NewPostgres returns a company store over a postgres connection.
func NewPostgres(db DBTX) *Queries {
	return &Queries{db: db, dialect: dialectPostgres}
}

type Queries struct {
	db      DBTX
	dialect dialect
}

// WithTx binds the store to an open transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

const companyColumns = `id, name, website_url, niche_category, is_running_ads, ads_url, custom_youtube_video, tags, created_at, updated_at`

var (
	queryCompanyGet = fmt.Sprintf(`select %s from companies where id = $1`, companyColumns)
	queryCompanyAdd = `
		insert into companies (
			name, website_url, niche_category, is_running_ads, ads_url, custom_youtube_video, tags, created_at, updated_at
		) values (
			$1, $2, $3, $4, $5, $6, $7, $8, $8
		)`
	queryCompanyList   = fmt.Sprintf(`select %s from companies order by id`, companyColumns)
	querySetVideoLink  = `update companies set custom_youtube_video = $1, updated_at = $2 where id = $3`
	queryCompanyDelete = `delete from companies where id = $1`
)

type AddParams struct {
	Name               string
	WebsiteURL         string
	NicheCategory      string
	IsRunningAds       bool
	AdsURL             string
	CustomYoutubeVideo string
	Tags               string
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (q *Queries) Add(ctx context.Context, arg AddParams) (*Company, error) {
	args := []interface{}{
		arg.Name, arg.WebsiteURL, arg.NicheCategory, arg.IsRunningAds,
		nullable(arg.AdsURL), nullable(arg.CustomYoutubeVideo), nullable(arg.Tags),
		time.Now().UTC(),
	}

	// lib/pq has no LastInsertId, the new row id comes back via returning
	if q.dialect == dialectPostgres {
		var id int64
		err := q.db.QueryRowContext(ctx, queryCompanyAdd+" returning id", args...).Scan(&id)
		if err != nil {
			return nil, err
		}
		return q.Get(ctx, id)
	}

	res, err := q.db.ExecContext(ctx, queryCompanyAdd, args...)
	if err != nil {
		return nil, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return q.Get(ctx, lastID)
}

func (q *Queries) Get(ctx context.Context, id int64) (*Company, error) {
	row := q.db.QueryRowContext(ctx, queryCompanyGet, id)
	i, err := scan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

func (q *Queries) List(ctx context.Context) ([]*Company, error) {
	rows, err := q.db.QueryContext(ctx, queryCompanyList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cs []*Company
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, err
		}
		cs = append(cs, &i)
	}
	return cs, rows.Err()
}

// SetVideoLink persists the shareable link produced by the upload step.
func (q *Queries) SetVideoLink(ctx context.Context, id int64, link string) error {
	res, err := q.db.ExecContext(ctx, querySetVideoLink, link, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("company %v not found", id)
	}
	return nil
}

func (q *Queries) Delete(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, queryCompanyDelete, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scan(r rowScanner) (Company, error) {
	var i Company
	if err := r.Scan(
		&i.ID,
		&i.Name,
		&i.WebsiteURL,
		&i.NicheCategory,
		&i.IsRunningAds,
		&i.AdsURL,
		&i.CustomYoutubeVideo,
		&i.Tags,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		return i, err
	}
	return i, nil
}
