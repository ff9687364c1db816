package portal

// Resource is anything the access gate can decide on.
// The owner ID is the sole authorization anchor.
type Resource interface {
	ResourceType() string
	ResourceID() string
	ResourceOwnerID() string
}

// ClientScope represents "everything owned by a client" and is used to
// authorize list and create operations that have no single target row.
type ClientScope struct {
	OwnerID string
}

func (c ClientScope) ResourceType() string    { return "client" }
func (c ClientScope) ResourceID() string      { return c.OwnerID }
func (c ClientScope) ResourceOwnerID() string { return c.OwnerID }

func (f *Folder) ResourceType() string    { return "folder" }
func (f *Folder) ResourceID() string      { return f.ID }
func (f *Folder) ResourceOwnerID() string { return f.OwnerID }

func (f *File) ResourceType() string    { return "file" }
func (f *File) ResourceID() string      { return f.ID }
func (f *File) ResourceOwnerID() string { return f.OwnerID }

func (r *Report) ResourceType() string    { return "report" }
func (r *Report) ResourceID() string      { return r.ID }
func (r *Report) ResourceOwnerID() string { return r.OwnerID }
