package types

import "time"

// User roles
const (
	RoleInnovator = "innovator"
	RoleInvestor  = "investor"
)

// Proposal lifecycle
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusFunded    = "funded"
	StatusArchived  = "archived"
)

// Proposal categories
var Categories = []string{
	"technology", "healthcare", "finance", "education",
	"environment", "consumer", "enterprise", "other",
}

// Proposal stages
var Stages = []string{"idea", "prototype", "mvp", "beta", "launched"}

// Users
type User struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Email    string `gorm:"size:256;uniqueIndex;not null" json:"email"`
	Role     string `gorm:"size:16;not null" json:"role"` // innovator|investor
	Bio      string `gorm:"type:text" json:"bio"`
	Location string `gorm:"size:128" json:"location"`
	Company  string `gorm:"size:128" json:"company"`

	// Investor aggregates. ReputationScore is stored as-is; no derivation
	// rule exists for it yet, so nothing in this repo recomputes it.
	TotalInvestments      uint32 `gorm:"default:0" json:"totalInvestments"`
	SuccessfulInvestments uint32 `gorm:"default:0" json:"successfulInvestments"`
	ReputationScore       uint32 `gorm:"default:0" json:"reputationScore"`

	CreatedAt time.Time `json:"createdAt"`
}

// Funding proposals
type Proposal struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	OwnerID     uint64 `gorm:"index;not null" json:"ownerId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:32;index" json:"category"`
	Stage       string `gorm:"size:32" json:"stage"`

	// Amounts are in the smallest currency unit (cents).
	FundingGoal    int64 `gorm:"not null" json:"fundingGoal"`
	CurrentFunding int64 `gorm:"not null;default:0" json:"currentFunding"`

	Status      string `gorm:"size:16;index;default:'draft'" json:"status"`
	ImpactScore string `gorm:"size:255" json:"impactScore"` // opaque text from the AI relay
	Views       uint64 `gorm:"default:0" json:"views"`

	// Version guards every funding-related write. CurrentFunding and Status
	// only change through a compare-and-swap on this column.
	Version uint64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Investments []Investment `gorm:"foreignKey:ProposalID" json:"investments,omitempty"`
	Likes       []Like       `gorm:"foreignKey:ProposalID" json:"likes,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:ProposalID" json:"comments,omitempty"`
}

// Investments are append-only: no update or delete exists anywhere, so
// CurrentFunding can always be audited by summing the rows.
type Investment struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	ProposalID uint64    `gorm:"index;not null" json:"proposalId"`
	InvestorID uint64    `gorm:"index;not null" json:"investorId"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Terms      string    `gorm:"size:255" json:"terms"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Likes are keyed by (proposal, user) so a user can hold at most one.
type Like struct {
	ProposalID uint64    `gorm:"primaryKey" json:"proposalId"`
	UserID     uint64    `gorm:"primaryKey" json:"userId"`
	LikedAt    time.Time `json:"likedAt"`
}

// Rated reviews
type Comment struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	ProposalID uint64    `gorm:"index;not null" json:"proposalId"`
	AuthorID   uint64    `gorm:"index;not null" json:"authorId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Rating     int       `gorm:"not null" json:"rating"` // 1..5
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidStage(s string) bool {
	for _, v := range Stages {
		if v == s {
			return true
		}
	}
	return false
}
