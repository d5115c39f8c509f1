// Package domain holds typed identifiers shared across bounded contexts.
// Wrapping uuid.UUID in distinct types prevents accidentally passing, say,
// a donation id where a pickup id is expected.
package domain

import "github.com/google/uuid"

type (
	// UserID identifies a platform user regardless of role.
	UserID uuid.UUID
	// ScheduleID identifies a volunteer availability schedule.
	ScheduleID uuid.UUID
	// DonationID identifies a donor-facing donation record.
	DonationID uuid.UUID
	// PickupID identifies the logistics pickup request paired with a donation.
	PickupID uuid.UUID
	// CharityID identifies a receiving charity.
	CharityID uuid.UUID
)

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewScheduleID() ScheduleID { return ScheduleID(uuid.New()) }
func NewDonationID() DonationID { return DonationID(uuid.New()) }
func NewPickupID() PickupID     { return PickupID(uuid.New()) }
func NewCharityID() CharityID   { return CharityID(uuid.New()) }

func parse[T ~[16]byte](s string) (T, error) {
	var zero T
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, err
	}
	return T(u), nil
}

func ParseUserID(s string) (UserID, error)         { return parse[UserID](s) }
func ParseScheduleID(s string) (ScheduleID, error) { return parse[ScheduleID](s) }
func ParseDonationID(s string) (DonationID, error) { return parse[DonationID](s) }
func ParsePickupID(s string) (PickupID, error)     { return parse[PickupID](s) }
func ParseCharityID(s string) (CharityID, error)   { return parse[CharityID](s) }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id ScheduleID) String() string { return uuid.UUID(id).String() }
func (id DonationID) String() string { return uuid.UUID(id).String() }
func (id PickupID) String() string   { return uuid.UUID(id).String() }
func (id CharityID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ScheduleID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id PickupID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CharityID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// MarshalText / UnmarshalText keep the canonical UUID string form in JSON
// payloads and map keys instead of the raw byte array encoding.

func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *UserID) UnmarshalText(b []byte) error {
	v, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id ScheduleID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *ScheduleID) UnmarshalText(b []byte) error {
	v, err := ParseScheduleID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id DonationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *DonationID) UnmarshalText(b []byte) error {
	v, err := ParseDonationID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id PickupID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *PickupID) UnmarshalText(b []byte) error {
	v, err := ParsePickupID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

func (id CharityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *CharityID) UnmarshalText(b []byte) error {
	v, err := ParseCharityID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
