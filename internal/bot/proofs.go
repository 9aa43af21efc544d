package bot

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/m3rciful/sitebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

// FileLookup resolves file ids; *tele.Bot implements it.
type FileLookup interface {
	FileByID(fileID string) (tele.File, error)
}

// ProofResolver turns a photo file id into its download link.
type ProofResolver struct {
	files  FileLookup
	apiURL string
	token  string
}

// NewProofResolver builds a resolver for files served by bot.
func NewProofResolver(bot *tele.Bot) *ProofResolver {
	return &ProofResolver{files: bot, apiURL: bot.URL, token: bot.Token}
}

// ResolveProof returns the file link Telegram serves for fileID.
func (r *ProofResolver) ResolveProof(_ context.Context, fileID string) (string, error) {
	f, err := r.files.FileByID(fileID)
	if err != nil {
		return "", errors.Wrap(err, "get file")
	}
	if f.FilePath == "" {
		return "", errors.Newf("file %s has no path", fileID)
	}
	return strings.TrimRight(r.apiURL, "/") + "/file/bot" + r.token + "/" + f.FilePath, nil
}

var _ shop.ProofResolver = (*ProofResolver)(nil)
