package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"example.com/pdbgate/internal/common"
	"example.com/pdbgate/internal/palm"
)

// containerExts lists the file extensions accepted for container uploads.
// Anything else is refused before a byte is stored.
var containerExts = map[string]bool{
	".pdb":  true,
	".prc":  true,
	".mobi": true,
	".azw":  true,
	".azw3": true,
}

var errNotAContainer = errors.New("not a recognized container")

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(256 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart: %v", err), http.StatusBadRequest)
		return
	}
	form := r.MultipartForm
	if form == nil || len(form.File) == 0 {
		http.Error(w, "no container files in request", http.StatusBadRequest)
		return
	}
	var refs []ArtifactRef
	for _, headers := range form.File {
		for _, fh := range headers {
			ref, err := s.storeContainerUpload(fh)
			if errors.Is(err, errNotAContainer) {
				http.Error(w, fmt.Sprintf("%s: %v", fh.Filename, err), http.StatusUnprocessableEntity)
				return
			}
			if err != nil {
				http.Error(w, fmt.Sprintf("store %s: %v", fh.Filename, err), http.StatusInternalServerError)
				return
			}
			refs = append(refs, ref)
		}
	}
	resp := struct {
		Files []ArtifactRef `json:"files"`
	}{Files: refs}
	writeJSON(w, http.StatusOK, resp)
}

// storeContainerUpload persists one uploaded container into the uploads
// area and registers it as an artifact. The upload is vetted twice before
// registration: its extension must be a container extension, and its
// leading bytes must carry a signature the parser recognizes.
func (s *Server) storeContainerUpload(fh *multipart.FileHeader) (ArtifactRef, error) {
	if fh == nil {
		return ArtifactRef{}, errors.New("nil file header")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !containerExts[ext] {
		return ArtifactRef{}, fmt.Errorf("%w: extension %q not accepted", errNotAContainer, ext)
	}
	src, err := fh.Open()
	if err != nil {
		return ArtifactRef{}, err
	}
	defer src.Close()
	dest, err := os.CreateTemp(s.uploadsDir, "container-*"+ext)
	if err != nil {
		return ArtifactRef{}, err
	}
	size, err := io.Copy(dest, src)
	if err != nil {
		dest.Close()
		os.Remove(dest.Name())
		return ArtifactRef{}, err
	}
	if err := dest.Close(); err != nil {
		os.Remove(dest.Name())
		return ArtifactRef{}, err
	}
	label, err := sniffContainer(dest.Name())
	if err != nil {
		os.Remove(dest.Name())
		return ArtifactRef{}, err
	}
	art, err := s.addArtifact(dest.Name(), fh.Filename, guessContentType(fh.Filename), "upload")
	if err != nil {
		return ArtifactRef{}, err
	}
	common.Logf("upload %s: %s, %d bytes", fh.Filename, label, size)
	return toRef(art), nil
}

// sniffContainer classifies a stored upload by its header signature.
func sniffContainer(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	label, ok := palm.Sniff(f)
	if !ok {
		return "", fmt.Errorf("%w: no known signature", errNotAContainer)
	}
	return label, nil
}
