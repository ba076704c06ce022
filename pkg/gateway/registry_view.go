package gateway

import (
	"net/http"
	"strconv"

	"github.com/clearvault/vault/pkg/engine"
)

// RegistryView is a read-only projection of the Authority Registry for the
// gateway's public config surface. Grounded on and adapted from the
// teacher's pkg/ports/registry.go (Manifest/NodeInfo/paginated GetNodes)
// and pkg/adapters/mockregistry.MockRegistry — repurposed from P2P node
// discovery into a read view over core.AuthorityRegistry: admin pubkey
// plus the authorized-program list, the only surviving trace of the
// teacher's node-discovery registry in this domain.
type RegistryView struct {
	engine *engine.Engine
}

func NewRegistryView(eng *engine.Engine) *RegistryView {
	return &RegistryView{engine: eng}
}

// Page mirrors the teacher's offset+limit GetNodes pagination shape.
type Page struct {
	Admin    string   `json:"admin,omitempty"`
	Programs []string `json:"programs"`
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
	Total    int      `json:"total"`
}

// AuthorizedPrograms returns a page of authorized program keys.
func (v *RegistryView) AuthorizedPrograms(offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	all := v.engine.AuthorizedPrograms()
	page := Page{Offset: offset, Limit: limit, Total: len(all)}
	if admin, ok := v.engine.RegistryAdmin(); ok {
		page.Admin = admin.String()
	}
	if offset >= len(all) {
		page.Programs = []string{}
		return page
	}
	end := offset + limit
	if end > len(all) || limit <= 0 {
		end = len(all)
	}
	page.Programs = make([]string, 0, end-offset)
	for _, p := range all[offset:end] {
		page.Programs = append(page.Programs, p.String())
	}
	return page
}

func (g *Gateway) handleAuthorizedPrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	view := NewRegistryView(g.engine)
	writeJSON(w, http.StatusOK, view.AuthorizedPrograms(offset, limit))
}
