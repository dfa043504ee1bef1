package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"association-portal/backend/internal/config"
	"association-portal/backend/internal/firebase"
	"association-portal/backend/internal/httpjson"
	"association-portal/backend/internal/utils"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploads hands out short-lived signed PUT URLs so admin forms can push
// images (post covers, partner logos, donation proofs) straight to the
// blob store without the file passing through this service.
type Uploads struct {
	cfg     config.Config
	clients *firebase.Clients
	iam     *credentials.IamCredentialsClient
}

func NewUploads(cfg config.Config, clients *firebase.Clients) *Uploads {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	return &Uploads{cfg: cfg, clients: clients, iam: iamClient}
}

type signedURLReq struct {
	Kind           string `json:"kind"`     // "posts", "partners", "proofs"
	FileName       string `json:"fileName"` // original name, used for slug + extension
	ContentType    string `json:"contentType,omitempty"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty"` // default 900
}

type signedURLResp struct {
	URL       string `json:"url"`
	Method    string `json:"method"`
	PublicURL string `json:"publicUrl"`
	ExpiresAt int64  `json:"expiresAt"`
}

var uploadKinds = map[string]bool{"posts": true, "partners": true, "proofs": true}

func (h *Uploads) CreateSignedUploadURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLReq
	if err := httpjson.Read(r, &req); err != nil || req.FileName == "" {
		httpjson.Error(w, http.StatusBadRequest, "fileName is required")
		return
	}
	if !uploadKinds[req.Kind] {
		httpjson.Error(w, http.StatusBadRequest, "kind must be one of: posts, partners, proofs")
		return
	}

	objectPath := h.objectPath(req.Kind, req.FileName)
	url, exp, err := h.signedURL(r.Context(), objectPath, req.ContentType, req.ExpiresSeconds)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	httpjson.Write(w, http.StatusOK, signedURLResp{
		URL:       url,
		Method:    "PUT",
		PublicURL: h.publicURL(objectPath),
		ExpiresAt: exp.Unix(),
	})
}

func (h *Uploads) objectPath(kind, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := utils.Slugify(strings.TrimSuffix(fileName, ext))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("images/%s/%s-%s%s", kind, base, uuid.NewString(), ext)
}

func (h *Uploads) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.cfg.StorageBucket, objectPath)
}

func (h *Uploads) signedURL(ctx context.Context, objectPath, contentType string, expiresSeconds int64) (string, time.Time, error) {
	if h.cfg.StorageBucket == "" {
		return "", time.Time{}, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if h.cfg.SignedURLServiceAccountEmail == "" {
		return "", time.Time{}, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if h.iam == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	if expiresSeconds <= 0 || expiresSeconds > 3600 {
		expiresSeconds = 900
	}
	exp := time.Now().Add(time.Duration(expiresSeconds) * time.Second)

	// V4 signed URL for PUT (upload).
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: h.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", h.cfg.SignedURLServiceAccountEmail)
			resp, err := h.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}

	url, err := storage.SignedURL(h.cfg.StorageBucket, objectPath, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}

	return url, exp, nil
}
