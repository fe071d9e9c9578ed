// Package graph builds the relationship graph over confirmed contacts.
// Contacts are linked to company hub nodes; the result is pure data for a UI
// renderer.
package graph

import (
	"fmt"
	"strings"

	"github.com/jonathan/contactlens/internal/types"
)

// Node kinds and rendering hints.
const (
	KindContact = "contact"
	KindCompany = "company"

	contactNodeSize = 25
	companyNodeSize = 35

	contactIcon = "https://cdn-icons-png.flaticon.com/512/3135/3135715.png"
	companyIcon = "https://cdn-icons-png.flaticon.com/512/4400/4400465.png"
)

// Node is a vertex in the relationship graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Size  int    `json:"size"`
	Image string `json:"image,omitempty"`
	Title string `json:"title,omitempty"`
}

// Edge is an undirected connection between a contact and its company hub.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the full node/edge set for rendering.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build constructs the relationship graph for the given contacts. Each
// contact becomes a node; contacts that name a company are linked to a shared
// company hub node, deduplicated by trimmed company name.
func Build(contacts []types.ConfirmedContact) Graph {
	g := Graph{}

	seenCompanies := make(map[string]bool)
	var companyOrder []string

	for _, contact := range contacts {
		g.Nodes = append(g.Nodes, Node{
			ID:    contact.ID,
			Label: contact.FullName,
			Kind:  KindContact,
			Size:  contactNodeSize,
			Image: contactIcon,
			Title: nodeTitle(contact),
		})

		company := strings.TrimSpace(contact.Company)
		if company == "" {
			continue
		}
		if !seenCompanies[company] {
			seenCompanies[company] = true
			companyOrder = append(companyOrder, company)
		}
		g.Edges = append(g.Edges, Edge{Source: contact.ID, Target: company})
	}

	for _, company := range companyOrder {
		g.Nodes = append(g.Nodes, Node{
			ID:    company,
			Label: company,
			Kind:  KindCompany,
			Size:  companyNodeSize,
			Image: companyIcon,
		})
	}

	return g
}

// nodeTitle is the hover text for a contact node.
func nodeTitle(contact types.ConfirmedContact) string {
	if contact.JobTitle == "" && contact.Company == "" {
		return ""
	}
	return fmt.Sprintf("%s @ %s", contact.JobTitle, contact.Company)
}
