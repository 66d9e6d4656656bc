package pipeline

import "github.com/gogpu/fragpipe"

// Storage loads and saves buffers for LoadFromFile and SaveToFile.
type Storage interface {
	Load(path string) (*fragpipe.Buffer, error)
	Save(b *fragpipe.Buffer, path string, format fragpipe.Format) error
}

// FileStorage reads and writes image files on the local file system.
type FileStorage struct{}

// Load decodes the image file at path.
func (FileStorage) Load(path string) (*fragpipe.Buffer, error) {
	return fragpipe.Load(path)
}

// Save encodes b to path.
func (FileStorage) Save(b *fragpipe.Buffer, path string, format fragpipe.Format) error {
	return b.Save(path, format)
}

func storageOrDefault(s Storage) Storage {
	if s == nil {
		return FileStorage{}
	}
	return s
}
