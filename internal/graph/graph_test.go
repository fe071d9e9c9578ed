package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contactlens/internal/types"
)

func contact(id, name, company string) types.ConfirmedContact {
	return types.ConfirmedContact{
		ContactDraft: types.ContactDraft{
			FullName:        name,
			Company:         company,
			JobTitle:        "Engineer",
			ConfidenceScore: 0.9,
		},
		ID: id,
	}
}

func TestBuildEmpty(t *testing.T) {
	g := Build(nil)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestBuildLinksContactsToCompanyHubs(t *testing.T) {
	g := Build([]types.ConfirmedContact{
		contact("id-1", "Jane Doe", "Acme Corp"),
		contact("id-2", "Bob Smith", "Acme Corp"),
		contact("id-3", "Eve Jones", "Globex"),
	})

	// 3 contact nodes + 2 company hubs
	require.Len(t, g.Nodes, 5)
	require.Len(t, g.Edges, 3)

	var companies []string
	for _, n := range g.Nodes {
		if n.Kind == KindCompany {
			companies = append(companies, n.ID)
			assert.Equal(t, companyNodeSize, n.Size)
		} else {
			assert.Equal(t, contactNodeSize, n.Size)
			assert.True(t, strings.HasPrefix(n.Title, "Engineer @ "))
		}
	}
	assert.ElementsMatch(t, []string{"Acme Corp", "Globex"}, companies)

	assert.Equal(t, Edge{Source: "id-1", Target: "Acme Corp"}, g.Edges[0])
	assert.Equal(t, Edge{Source: "id-2", Target: "Acme Corp"}, g.Edges[1])
	assert.Equal(t, Edge{Source: "id-3", Target: "Globex"}, g.Edges[2])
}

func TestBuildTrimsCompanyNames(t *testing.T) {
	g := Build([]types.ConfirmedContact{
		contact("id-1", "Jane Doe", "  Acme Corp  "),
		contact("id-2", "Bob Smith", "Acme Corp"),
	})

	var hubs int
	for _, n := range g.Nodes {
		if n.Kind == KindCompany {
			hubs++
			assert.Equal(t, "Acme Corp", n.ID)
		}
	}
	assert.Equal(t, 1, hubs)
}

func TestBuildSkipsEdgeWithoutCompany(t *testing.T) {
	g := Build([]types.ConfirmedContact{
		contact("id-1", "Jane Doe", ""),
	})

	require.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
	assert.Equal(t, KindContact, g.Nodes[0].Kind)
}
