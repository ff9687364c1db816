package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalRepo "clientportal/internal/domain/repositories/portal"
	"clientportal/internal/repository/postgres"
)

// PostgresReportRepository implements the ReportRepository interface
type PostgresReportRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewReportRepository creates a new report repository
func NewReportRepository(config *postgres.RepositoryConfig) portalRepo.ReportRepository {
	return &PostgresReportRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a report row after its blob has been written
func (r *PostgresReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, file_name, storage_key, month, service, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Reports)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		report.OwnerID,
		report.FileName,
		report.StorageKey,
		report.Month,
		report.Service,
		report.SizeBytes,
		report.CreatedAt,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("storage key %q already in use", report.StorageKey),
				ResourceType: "report",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: fmt.Sprintf("client %s does not exist", report.OwnerID)}
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report with its owner's display fields
func (r *PostgresReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf(`
		SELECT r.id, r.owner_id, r.file_name, r.storage_key, r.month, r.service, r.size_bytes, r.created_at,
		       COALESCE(c.name, ''), c.company
		FROM %s r
		LEFT JOIN %s c ON c.id = r.owner_id
		WHERE r.id = $1
	`, r.tables.Reports, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	report, err := scanReport(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("report %s not found", id)}
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// Delete deletes a report row
func (r *PostgresReportRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Reports)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("report %s not found", id)}
	}
	return nil
}

// List returns one page of reports, newest first. The id tiebreaker keeps
// pages disjoint when several reports share a created_at.
func (r *PostgresReportRepository) List(ctx context.Context, filter models.ReportFilter, page models.PageRequest) ([]models.Report, int, error) {
	where, args := reportWhere(filter)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s r
		LEFT JOIN %s c ON c.id = r.owner_id
		WHERE %s
	`, r.tables.Reports, r.tables.Clients, where)

	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT r.id, r.owner_id, r.file_name, r.storage_key, r.month, r.service, r.size_bytes, r.created_at,
		       COALESCE(c.name, ''), c.company
		FROM %s r
		LEFT JOIN %s c ON c.id = r.owner_id
		WHERE %s
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d
	`, r.tables.Reports, r.tables.Clients, where, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := executor.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, total, nil
}

// Count counts reports created within the range
func (r *PostgresReportRepository) Count(ctx context.Context, dr models.DateRange) (int, error) {
	where, args := reportWhere(models.ReportFilter{Range: dr})
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s r WHERE %s`, r.tables.Reports, where)

	var total int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return total, nil
}

// reportWhere builds the shared WHERE clause. Reports are aliased r and
// clients c; the owner search is only added when no owner is fixed.
func reportWhere(filter models.ReportFilter) (string, []interface{}) {
	conditions := []string{"TRUE"}
	var args []interface{}

	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OwnerID != nil {
		conditions = append(conditions, "r.owner_id = "+next(*filter.OwnerID))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		p := next("%" + escapeLike(search) + "%")
		if filter.OwnerID != nil {
			conditions = append(conditions, fmt.Sprintf("r.file_name ILIKE %s", p))
		} else {
			conditions = append(conditions, fmt.Sprintf(
				"(r.file_name ILIKE %[1]s OR c.name ILIKE %[1]s OR c.company ILIKE %[1]s)", p))
		}
	}

	if start := filter.Range.StartInclusive(); start != nil {
		conditions = append(conditions, "r.created_at >= "+next(*start))
	}
	if end := filter.Range.EndExclusive(); end != nil {
		conditions = append(conditions, "r.created_at < "+next(*end))
	}

	return strings.Join(conditions, " AND "), args
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	err := row.Scan(
		&report.ID,
		&report.OwnerID,
		&report.FileName,
		&report.StorageKey,
		&report.Month,
		&report.Service,
		&report.SizeBytes,
		&report.CreatedAt,
		&report.OwnerName,
		&report.OwnerCompany,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// escapeLike escapes LIKE wildcards so search text matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
