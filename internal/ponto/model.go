// internal/ponto/model.go
//
// Disposal-point records and submission candidates.
//
// Context
// -------
// A disposal point ("ponto de descarte") is a public submission describing a
// place that accepts recyclable materials.  Rows live in the
// `pontos_descarte` table:
//
//	pontos_descarte (id PK, nome_do_ponto, descricao, materiais_aceitos,
//	                 latitude, longitude, aprovado, created_at, updated_at)
//
// JSON and column names keep the Portuguese names the map client already
// consumes.  Go field names are English.
//
// Notes
// -----
//   - Content fields are fixed at creation.  Only Approved and UpdatedAt
//     ever change, and Approved only moves from false to true.
//   - Oxford commas, two spaces after periods.
package ponto

import "time"

// DisposalPoint mirrors one row in `pontos_descarte`.
type DisposalPoint struct {
	ID                int64     `db:"id"                json:"id"`
	Name              string    `db:"nome_do_ponto"     json:"nome_do_ponto"`
	Description       string    `db:"descricao"         json:"descricao"`
	AcceptedMaterials string    `db:"materiais_aceitos" json:"materiais_aceitos"`
	Latitude          float64   `db:"latitude"          json:"latitude"`
	Longitude         float64   `db:"longitude"         json:"longitude"`
	Approved          bool      `db:"aprovado"          json:"aprovado"`
	CreatedAt         time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"        json:"updated_at"`
}

// State reports where the record sits in the moderation queue.  Deleted
// records are removed from storage, so a loaded record is never Deleted.
func (p DisposalPoint) State() State {
	if p.Approved {
		return StateApproved
	}
	return StatePending
}

// State is a moderation-queue state.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateDeleted  State = "deleted"
)

// Candidate is a public submission before validation.  Coordinates are
// pointers so a missing value is distinguishable from 0.
type Candidate struct {
	Name              string   `json:"nome_do_ponto"     validate:"required,min=3,max=200"`
	Description       string   `json:"descricao"         validate:"required,min=10,max=1000"`
	AcceptedMaterials string   `json:"materiais_aceitos" validate:"required,min=1,max=500"`
	Latitude          *float64 `json:"latitude"          validate:"required,latitude"`
	Longitude         *float64 `json:"longitude"         validate:"required,longitude"`
}
