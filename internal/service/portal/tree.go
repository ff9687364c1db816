package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"clientportal/internal/config"
	"clientportal/internal/domain"
	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/domain/repositories"
	portalRepo "clientportal/internal/domain/repositories/portal"
	"clientportal/internal/domain/services"
	portalSvc "clientportal/internal/domain/services/portal"
	"clientportal/internal/storage"
)

type treeService struct {
	folderRepo portalRepo.FolderRepository
	fileRepo   portalRepo.FileRepository
	clientRepo portalRepo.ClientRepository
	blobs      repositories.BlobStore
	txManager  repositories.TransactionManager
	gate       services.AccessGate
	opts       Options
	logger     *slog.Logger
}

// NewTreeService creates the folder/file tree service
func NewTreeService(
	folderRepo portalRepo.FolderRepository,
	fileRepo portalRepo.FileRepository,
	clientRepo portalRepo.ClientRepository,
	blobs repositories.BlobStore,
	txManager repositories.TransactionManager,
	gate services.AccessGate,
	opts Options,
	logger *slog.Logger,
) portalSvc.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		clientRepo: clientRepo,
		blobs:      blobs,
		txManager:  txManager,
		gate:       gate,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// ListChildren returns one level of a client's tree: child folders, then
// files, each by name, plus the breadcrumb trail of the opened folder.
func (s *treeService) ListChildren(ctx context.Context, actor models.Actor, ownerID string, folderID *string) (*models.FolderContents, error) {
	if err := s.gate.Authorize(actor, models.ClientScope{OwnerID: ownerID}).Err(); err != nil {
		return nil, err
	}

	contents := &models.FolderContents{Breadcrumbs: []models.Crumb{}}
	if folderID != nil {
		folder, err := ownedFolder(ctx, s.folderRepo, ownerID, *folderID)
		if err != nil {
			return nil, err
		}
		contents.Folder = folder
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		folders, err := s.folderRepo.ListChildren(gctx, ownerID, folderID)
		contents.Folders = folders
		return err
	})
	g.Go(func() error {
		files, err := s.fileRepo.ListByFolder(gctx, ownerID, folderID)
		contents.Files = files
		return err
	})
	if contents.Folder != nil {
		g.Go(func() error {
			chain, err := ancestors(gctx, s.folderRepo, contents.Folder)
			if err != nil {
				return err
			}
			contents.Breadcrumbs = crumbsOf(chain)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if contents.Folders == nil {
		contents.Folders = []models.Folder{}
	}
	if contents.Files == nil {
		contents.Files = []models.File{}
	}
	return contents, nil
}

// Breadcrumbs returns root..folder; an empty trail for the root level
func (s *treeService) Breadcrumbs(ctx context.Context, actor models.Actor, folderID *string) ([]models.Crumb, error) {
	if folderID == nil {
		return []models.Crumb{}, nil
	}

	folder, err := s.folderRepo.GetByID(ctx, *folderID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(actor, folder).Err(); err != nil {
		return nil, err
	}

	chain, err := ancestors(ctx, s.folderRepo, folder)
	if err != nil {
		s.logger.Error("breadcrumb walk failed", "folder_id", folder.ID, "error", err)
		return nil, err
	}
	return crumbsOf(chain), nil
}

// CreateFolder creates a folder under parent (nil = root) in the owner's tree
func (s *treeService) CreateFolder(ctx context.Context, actor models.Actor, req *portalSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := s.gate.AuthorizeManage(actor, models.ClientScope{OwnerID: req.OwnerID}).Err(); err != nil {
		return nil, err
	}

	name, err := normalizeName(req.Name, "folder", config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := s.ensureClient(ctx, req.OwnerID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := ownedFolder(ctx, s.folderRepo, req.OwnerID, *req.ParentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	if s.opts.StrictNames {
		if err := s.checkFolderName(ctx, req.OwnerID, req.ParentID, name, ""); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &models.Folder{
		OwnerID:   req.OwnerID,
		ParentID:  req.ParentID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", folder.OwnerID,
		"parent_id", folder.ParentID,
		"actor_id", actor.ID,
	)
	return folder, nil
}

// RenameFolder changes a folder's name only
func (s *treeService) RenameFolder(ctx context.Context, actor models.Actor, id, name string) (*models.Folder, error) {
	name, err := normalizeName(name, "folder", config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeManage(actor, folder).Err(); err != nil {
		return nil, err
	}

	if folder.Name == name {
		return folder, nil
	}
	if s.opts.StrictNames {
		if err := s.checkFolderName(ctx, folder.OwnerID, folder.ParentID, name, folder.ID); err != nil {
			return nil, err
		}
	}

	oldName := folder.Name
	folder.Name = name
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "old_name", oldName, "name", folder.Name, "actor_id", actor.ID)
	return folder, nil
}

// RenameFile changes a file's display name. The blob and its key are untouched.
func (s *treeService) RenameFile(ctx context.Context, actor models.Actor, id, name string) (*models.File, error) {
	name, err := normalizeName(name, "file", config.MaxFileNameLength)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeManage(actor, file).Err(); err != nil {
		return nil, err
	}

	if file.FileName == name {
		return file, nil
	}
	if s.opts.StrictNames {
		existing, err := s.fileRepo.GetByName(ctx, file.OwnerID, file.FolderID, name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != file.ID {
			return nil, fileConflict(existing)
		}
	}

	oldName := file.FileName
	file.FileName = name
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", file.ID, "old_name", oldName, "name", file.FileName, "actor_id", actor.ID)
	return file, nil
}

// UploadFiles stores each file blob-then-row, in order. The first file
// whose name already exists in the folder aborts the rest with a
// ConflictError; files stored before it are kept and returned.
func (s *treeService) UploadFiles(ctx context.Context, actor models.Actor, req *portalSvc.UploadFilesRequest) ([]models.File, error) {
	if err := s.gate.AuthorizeManage(actor, models.ClientScope{OwnerID: req.OwnerID}).Err(); err != nil {
		return nil, err
	}

	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	// Validate the whole batch before writing anything
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", domain.ErrValidation)
	}
	if len(req.Files) > config.MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: at most %d files per upload", domain.ErrValidation, config.MaxFilesPerUpload)
	}
	names := make([]string, len(req.Files))
	for i, f := range req.Files {
		name, err := normalizeName(f.Name, "file", config.MaxFileNameLength)
		if err != nil {
			return nil, err
		}
		if f.Size < 0 || f.Content == nil {
			return nil, fmt.Errorf("%w: file %q has no content", domain.ErrValidation, name)
		}
		if f.Size > s.opts.MaxUploadBytes {
			return nil, fmt.Errorf("%w: file %q exceeds the %d byte limit", domain.ErrValidation, name, s.opts.MaxUploadBytes)
		}
		names[i] = name
	}

	if err := s.ensureClient(ctx, req.OwnerID); err != nil {
		return nil, err
	}
	if req.FolderID != nil {
		if _, err := ownedFolder(ctx, s.folderRepo, req.OwnerID, *req.FolderID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
	}

	stored := make([]models.File, 0, len(req.Files))
	for i, f := range req.Files {
		existing, err := s.fileRepo.GetByName(ctx, req.OwnerID, req.FolderID, names[i])
		if err != nil {
			return stored, err
		}
		if existing != nil {
			s.logger.Info("upload stopped on name collision",
				"owner_id", req.OwnerID,
				"folder_id", req.FolderID,
				"name", names[i],
				"stored", len(stored),
				"skipped", len(req.Files)-len(stored),
			)
			return stored, fileConflict(existing)
		}

		file, err := s.storeFile(ctx, req.OwnerID, req.FolderID, names[i], f)
		if err != nil {
			return stored, err
		}
		stored = append(stored, *file)
	}

	s.logger.Info("files uploaded", "owner_id", req.OwnerID, "folder_id", req.FolderID, "count", len(stored), "actor_id", actor.ID)
	return stored, nil
}

// storeFile writes the blob, then the row. A failed insert leaves the blob
// orphaned; it is logged and not retried.
func (s *treeService) storeFile(ctx context.Context, ownerID string, folderID *string, name string, f models.UploadedFile) (*models.File, error) {
	contentType, body, err := storage.Sniff(io.LimitReader(f.Content, f.Size))
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", name, err)
	}

	key := storage.ProjectFileKey(ownerID, name)
	if err := s.blobs.Write(ctx, key, body, f.Size, contentType); err != nil {
		return nil, fmt.Errorf("store file %q: %w", name, err)
	}

	now := time.Now()
	file := &models.File{
		OwnerID:     ownerID,
		FolderID:    folderID,
		FileName:    name,
		StorageKey:  key,
		SizeBytes:   f.Size,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.logger.Warn("orphaned blob after failed insert", "storage_key", key, "name", name, "error", err)
		return nil, err
	}
	return file, nil
}

// DeleteFolder removes an empty folder
func (s *treeService) DeleteFolder(ctx context.Context, actor models.Actor, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.AuthorizeManage(actor, folder).Err(); err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.requireEmpty(txCtx, folder); err != nil {
			return err
		}
		return s.folderRepo.Delete(txCtx, folder.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folder.ID, "name", folder.Name, "owner_id", folder.OwnerID, "actor_id", actor.ID)
	return nil
}

// DeleteFile removes the blob, then the row. A blob that is already gone
// is tolerated; any other storage failure keeps the row.
func (s *treeService) DeleteFile(ctx context.Context, actor models.Actor, id string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.AuthorizeManage(actor, file).Err(); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete file blob: %w", err)
		}
		s.logger.Warn("file blob already missing", "id", file.ID, "storage_key", file.StorageKey)
	}

	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", file.ID, "name", file.FileName, "owner_id", file.OwnerID, "actor_id", actor.ID)
	return nil
}

// DeleteBatch deletes a mixed selection of folders and files.
//
// Every folder is checked for emptiness before anything is touched; one
// non-empty folder fails the whole batch. Files are then removed one by
// one (blob best-effort, then row) and the folders in one transaction.
func (s *treeService) DeleteBatch(ctx context.Context, actor models.Actor, items []models.BatchItem) (*portalSvc.BatchDeleteResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items selected", domain.ErrValidation)
	}
	if len(items) > config.MaxBatchItems {
		return nil, fmt.Errorf("%w: at most %d items per batch", domain.ErrValidation, config.MaxBatchItems)
	}

	var folders []*models.Folder
	var files []*models.File
	seen := make(map[models.BatchItem]bool, len(items))

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if seen[item] {
			continue
		}
		seen[item] = true

		switch item.Type {
		case models.ItemTypeFolder:
			folder, err := s.folderRepo.GetByID(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			if err := s.gate.AuthorizeManage(actor, folder).Err(); err != nil {
				return nil, err
			}
			folders = append(folders, folder)
		case models.ItemTypeFile:
			file, err := s.fileRepo.GetByID(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			if err := s.gate.AuthorizeManage(actor, file).Err(); err != nil {
				return nil, err
			}
			files = append(files, file)
		}
	}

	// All folder checks happen before the first deletion
	for _, folder := range folders {
		if err := s.requireEmpty(ctx, folder); err != nil {
			return nil, err
		}
	}

	// One file at a time: blob, then its row. No row outlives its blob.
	result := &portalSvc.BatchDeleteResult{}
	for _, file := range files {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("file blob already missing", "id", file.ID, "storage_key", file.StorageKey)
			} else {
				result.BlobFailures++
				s.logger.Warn("batch delete: blob removal failed, deleting row anyway",
					"id", file.ID, "storage_key", file.StorageKey, "error", err)
			}
		}
		if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			s.logger.Info("batch delete: file row already gone", "id", file.ID)
		}
		result.DeletedFiles++
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, folder := range folders {
			// Guards against children added since the first check
			if err := s.requireEmpty(txCtx, folder); err != nil {
				return err
			}
			if err := s.folderRepo.Delete(txCtx, folder.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if result.DeletedFiles > 0 {
			s.logger.Warn("batch delete: folders kept after files were removed",
				"deleted_files", result.DeletedFiles, "error", err)
		}
		return nil, err
	}

	result.DeletedFolders = len(folders)
	s.logger.Info("batch deleted",
		"folders", result.DeletedFolders,
		"files", result.DeletedFiles,
		"blob_failures", result.BlobFailures,
		"actor_id", actor.ID,
	)
	return result, nil
}

// OpenFile authorizes a read and opens the file's blob. Previews require
// the blob to exist; a missing blob is reported as not found either way.
func (s *treeService) OpenFile(ctx context.Context, actor models.Actor, id string, mode portalSvc.OpenMode) (*models.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.gate.Authorize(actor, file).Err(); err != nil {
		return nil, nil, err
	}

	rc, err := openBlob(ctx, s.blobs, file.StorageKey, file.OwnerID, mode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("file blob missing", "id", file.ID, "storage_key", file.StorageKey)
			return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("content of file %s not found", file.ID)}
		}
		if errors.Is(err, domain.ErrIntegrity) {
			s.logger.Error("file row points outside its owner's storage", "id", file.ID, "owner_id", file.OwnerID, "storage_key", file.StorageKey)
		}
		return nil, nil, err
	}
	return file, rc, nil
}

func (s *treeService) requireEmpty(ctx context.Context, folder *models.Folder) error {
	childFolders, childFiles, err := s.folderRepo.CountChildren(ctx, folder.ID)
	if err != nil {
		return err
	}
	if childFolders > 0 || childFiles > 0 {
		return &domain.NotEmptyError{
			Message:    fmt.Sprintf("folder %q is not empty (%d folders, %d files)", folder.Name, childFolders, childFiles),
			FolderID:   folder.ID,
			FolderName: folder.Name,
		}
	}
	return nil
}

func (s *treeService) checkFolderName(ctx context.Context, ownerID string, parentID *string, name, selfID string) error {
	existing, err := s.folderRepo.GetByName(ctx, ownerID, parentID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q already exists here", name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}

func (s *treeService) ensureClient(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: owner is required", domain.ErrValidation)
	}
	if _, err := s.clientRepo.GetByID(ctx, ownerID); err != nil {
		return err
	}
	return nil
}

func fileConflict(existing *models.File) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("file %q already exists in this folder", existing.FileName),
		ResourceType: "file",
		ResourceID:   existing.ID,
	}
}

// openBlob opens a blob for download or preview. The key must sit in the
// owner's namespace.
func openBlob(ctx context.Context, blobs repositories.BlobStore, key, ownerID string, mode portalSvc.OpenMode) (io.ReadCloser, error) {
	if keyOwner, ok := storage.OwnerFromKey(key); !ok || keyOwner != ownerID {
		return nil, &domain.IntegrityError{Message: fmt.Sprintf("storage key %q is outside the namespace of owner %s", key, ownerID)}
	}
	if mode == portalSvc.OpenPreview {
		ok, err := blobs.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
	}
	rc, _, err := blobs.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	return rc, nil
}
