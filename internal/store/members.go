package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/evidenca/internal/db"
	"github.com/erazemk/evidenca/internal/model"
)

const memberColumns = `member_id, first_name, last_name, email, phone, join_date,
        membership_status, created_at`

// CreateMember registers a member. An empty status defaults to Active and
// a zero join date defaults to today.
func CreateMember(ctx context.Context, database *sql.DB, m model.Member) (*model.Member, error) {
	if m.Status == "" {
		m.Status = model.MembershipActive
	}
	if err := model.ValidateMember(m); err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`INSERT INTO members (first_name, last_name, email, phone, join_date, membership_status)
		 VALUES (?, ?, ?, ?, COALESCE(?, date('now')), ?)`,
		m.FirstName, m.LastName, m.Email, nullString(m.Phone), m.JoinDate, m.Status,
	)
	if err != nil {
		return nil, db.Classify(err, "creating member")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting member id: %w", err)
	}

	return GetMember(ctx, database, id)
}

// GetMember returns a member by ID.
func GetMember(ctx context.Context, database *sql.DB, id int64) (*model.Member, error) {
	row := database.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE member_id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, notFound("member", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	return m, nil
}

// ListMembers returns all members ordered by last and first name.
func ListMembers(ctx context.Context, database *sql.DB) ([]model.Member, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY last_name, first_name, member_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// UpdateMember replaces a member's contact details and status. The join
// date and status are kept when left zero in m.
func UpdateMember(ctx context.Context, database *sql.DB, id int64, m model.Member) (*model.Member, error) {
	check := m
	if check.Status == "" {
		check.Status = model.MembershipActive
	}
	if err := model.ValidateMember(check); err != nil {
		return nil, fmt.Errorf("updating member: %w", err)
	}

	result, err := database.ExecContext(ctx,
		`UPDATE members SET first_name = ?, last_name = ?, email = ?, phone = ?,
		        join_date = COALESCE(?, join_date),
		        membership_status = COALESCE(?, membership_status)
		 WHERE member_id = ?`,
		m.FirstName, m.LastName, m.Email, nullString(m.Phone), m.JoinDate,
		nullString(string(m.Status)), id,
	)
	if err != nil {
		return nil, db.Classify(err, "updating member")
	}
	if err := expectOne(result, "member", id); err != nil {
		return nil, err
	}
	return GetMember(ctx, database, id)
}

// UpdateMemberStatus changes only the membership status. Open borrowings
// are unaffected; the status is checked again at the next checkout.
func UpdateMemberStatus(ctx context.Context, database *sql.DB, id int64, status model.MembershipStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", model.ErrInvalidState, model.RuleMembershipStatus)
	}

	result, err := database.ExecContext(ctx,
		`UPDATE members SET membership_status = ? WHERE member_id = ?`, status, id,
	)
	if err != nil {
		return db.Classify(err, "updating member status")
	}
	return expectOne(result, "member", id)
}

// DeleteMember removes a member who has never borrowed anything.
func DeleteMember(ctx context.Context, database *sql.DB, id int64) error {
	return db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM borrowings WHERE member_id = ?`, id,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking member borrowings: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: member %d is referenced by %d borrowings", model.ErrConflict, id, count)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM members WHERE member_id = ?`, id)
		if err != nil {
			return db.Classify(err, "deleting member")
		}
		return expectOne(result, "member", id)
	})
}

func scanMember(s rowScanner) (*model.Member, error) {
	m := &model.Member{}
	var phone sql.NullString
	err := s.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &phone, &m.JoinDate,
		&m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Phone = phone.String
	return m, nil
}
