package persist

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
	"github.com/sirupsen/logrus"
)

func NewPostgres(db *sql.DB, logger logrus.FieldLogger) Persister {
	return &Postgres{
		db:     db,
		logger: logger,
	}
}

type Postgres struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Store(ctx context.Context, d cache.Domain, r cache.Recipient, vr validator.Result) error {
	stmt, err := p.db.Prepare(`
			INSERT INTO
				verifications (domain, recipient, valid_format, has_mx, domain_exists, status)
			VALUES
				($1, $2::bytea, $3, $4, $5, $6)
			ON CONFLICT (domain, recipient) DO UPDATE
			SET
				valid_format = EXCLUDED.valid_format,
				has_mx = EXCLUDED.has_mx,
				domain_exists = EXCLUDED.domain_exists,
				status = EXCLUDED.status`)

	if err != nil {
		return err
	}

	defer deferClose(stmt, p.logger)
	_, err = stmt.ExecContext(ctx,
		string(d),
		[]byte(r),
		vr.ValidFormat,
		int16(vr.HasMX),
		int16(vr.DomainExists),
		vr.Status.String(),
	)

	return err
}

func (p *Postgres) Range(ctx context.Context, cb RangeFn) error {

	if err := p.db.Ping(); err != nil {
		return err
	}

	stmt, err := p.db.Prepare(`
		SELECT
			domain,
			recipient::bytea,
			valid_format,
			has_mx,
			domain_exists,
			status
		FROM
			verifications
	`)

	if err != nil {
		return err
	}

	defer deferClose(stmt, p.logger)

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return err
	}

	defer deferClose(rows, p.logger)

	for rows.Next() {
		var row verificationRow

		if err := rows.Scan(&row.Domain, &row.Recipient, &row.ValidFormat, &row.HasMX, &row.DomainExists, &row.Status); err != nil {
			p.logger.WithError(err).Warn("Error scanning field")
			continue
		}

		err := cb(cache.Domain(row.Domain), cache.Recipient(row.Recipient), rowToResult(row))
		if err != nil {
			return err
		}
	}

	return nil
}

func rowToResult(row verificationRow) validator.Result {
	return validator.Result{
		ValidFormat:  row.ValidFormat,
		HasMX:        types.Tristate(row.HasMX),
		DomainExists: types.Tristate(row.DomainExists),
		Status:       types.ParseStatus(row.Status),
	}
}

type verificationRow struct {
	Domain       string `sql:"domain"`
	Recipient    []byte `sql:"recipient"`
	ValidFormat  bool   `sql:"valid_format"`
	HasMX        int16  `sql:"has_mx"`
	DomainExists int16  `sql:"domain_exists"`
	Status       string `sql:"status"`
}

func deferClose(toClose io.Closer, log logrus.FieldLogger) {
	if toClose == nil {
		return
	}

	err := toClose.Close()
	if err != nil {
		if log == nil {
			fmt.Printf("error failed to close handle %s", err)
			return
		}

		log.WithError(err).Error("Failed to close handle")
	}
}
