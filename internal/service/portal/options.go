package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	portalRepo "clientportal/internal/domain/repositories/portal"
)

// Options tune the tree and report services.
type Options struct {
	// MaxUploadBytes caps each uploaded file
	MaxUploadBytes int64
	// StrictNames rejects a folder create/rename or file rename that would
	// duplicate a sibling's name. Uploads always reject duplicates.
	StrictNames bool
}

// OptionsFromConfig maps process configuration onto service options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		StrictNames:    cfg.StrictNames,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	return o
}

// normalizeName trims and validates a folder or file name
func normalizeName(name, kind string, max int) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error(kind+" name is required"),
		validation.RuneLength(1, max).Error(fmt.Sprintf("%s name must be between 1 and %d characters", kind, max)),
		validation.By(noControlChars),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}

func noControlChars(value interface{}) error {
	s, _ := value.(string)
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("name cannot contain control characters")
		}
	}
	return nil
}

// ancestors walks parent_id upward from folder and returns the chain
// root first, folder last. The walk is bounded and fails with an
// IntegrityError on a cycle, an over-deep chain or an owner change.
func ancestors(ctx context.Context, repo portalRepo.FolderRepository, folder *models.Folder) ([]models.Folder, error) {
	chain := []models.Folder{*folder}
	seen := map[string]bool{folder.ID: true}
	current := folder

	for current.ParentID != nil {
		if len(chain) >= config.MaxFolderDepth {
			return nil, &domain.IntegrityError{
				Message: fmt.Sprintf("folder %s is nested deeper than %d levels", folder.ID, config.MaxFolderDepth),
			}
		}
		parentID := *current.ParentID
		if seen[parentID] {
			return nil, &domain.IntegrityError{
				Message: fmt.Sprintf("folder %s has a cyclic parent chain at %s", folder.ID, parentID),
			}
		}

		parent, err := repo.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.IntegrityError{
					Message: fmt.Sprintf("folder %s references missing parent %s", current.ID, parentID),
				}
			}
			return nil, fmt.Errorf("load parent folder: %w", err)
		}
		if parent.OwnerID != folder.OwnerID {
			return nil, &domain.IntegrityError{
				Message: fmt.Sprintf("folder %s has a parent owned by another client", current.ID),
			}
		}

		seen[parent.ID] = true
		chain = append(chain, *parent)
		current = parent
	}

	// Reverse to root..current
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func crumbsOf(chain []models.Folder) []models.Crumb {
	crumbs := make([]models.Crumb, 0, len(chain))
	for _, f := range chain {
		crumbs = append(crumbs, models.Crumb{ID: f.ID, Name: f.Name})
	}
	return crumbs
}

// ownedFolder loads a folder and hides it when it belongs to someone else
func ownedFolder(ctx context.Context, repo portalRepo.FolderRepository, ownerID, folderID string) (*models.Folder, error) {
	folder, err := repo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folderID)}
	}
	return folder, nil
}
