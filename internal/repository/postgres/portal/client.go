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

const clientColumns = `id, name, email, company, tax_id, client_type, role, created_at, updated_at, deleted_at`

// PostgresClientRepository implements the ClientRepository interface
type PostgresClientRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewClientRepository creates a new client repository
func NewClientRepository(config *postgres.RepositoryConfig) portalRepo.ClientRepository {
	return &PostgresClientRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a client keyed by its auth user id
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, company, tax_id, client_type, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		client.ID,
		client.Name,
		client.Email,
		client.Company,
		client.TaxID,
		client.ClientType,
		client.Role.String(),
		client.CreatedAt,
		client.UpdatedAt,
	).Scan(&client.CreatedAt, &client.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("client already exists (%s)", postgres.PgConstraintName(err)),
				ResourceType: "client",
				ResourceID:   client.ID,
			}
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// GetByID retrieves a non-deleted client
func (r *PostgresClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND deleted_at IS NULL`, clientColumns, r.tables.Clients)

	executor := postgres.GetExecutor(ctx, r.pool)
	client, err := scanClient(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("client %s not found", id)}
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}

// List returns non-deleted clients with role client, newest first
func (r *PostgresClientRepository) List(ctx context.Context, filter models.ClientFilter, page models.PageRequest) ([]models.Client, int, error) {
	where := `role = 'client' AND deleted_at IS NULL`
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where += ` AND (name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1 OR tax_id ILIKE $1)`
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Clients, where)
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clientColumns, r.tables.Clients, where, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := executor.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, total, nil
}

// CountActive counts non-deleted clients with role client created within the range
func (r *PostgresClientRepository) CountActive(ctx context.Context, dr models.DateRange) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE role = 'client' AND deleted_at IS NULL`, r.tables.Clients)
	var args []interface{}
	if start := dr.StartInclusive(); start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if end := dr.EndExclusive(); end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}

	var total int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count active clients: %w", err)
	}
	return total, nil
}

func scanClient(row rowScanner) (*models.Client, error) {
	var client models.Client
	var role string
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Company,
		&client.TaxID,
		&client.ClientType,
		&role,
		&client.CreatedAt,
		&client.UpdatedAt,
		&client.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", client.ID, err)
	}
	client.Role = parsed
	return &client, nil
}
