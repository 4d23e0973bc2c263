package protomail

import (
	"encoding/hex"
	"fmt"
	"time"
)

// Scenario is the immutable parameter record behind one named test vector.
type Scenario struct {
	Name string

	Encrypt    bool
	Sign       bool
	Multilayer bool // sign as a nested wrapper first, then encrypt the wrapper
	Legacy     bool // include a legacy-display duplicate of the Subject
	Multipart  bool // payload is multipart/mixed rather than one text part
	OnePart    bool // one-part opaque signature instead of multipart/signed
	SMIME      bool

	// SessionKey seeds every random choice of the encryption operation;
	// present iff Encrypt
	SessionKey []byte

	// MinuteOffset is added to the fixed base hour to give each scenario
	// its own deterministic Date
	MinuteOffset int

	Subject string
}

// ErrUnknownScenario is returned by LookupScenario for names outside the
// fixed table.
var ErrUnknownScenario = fmt.Errorf("unknown scenario")

// trueSubject is the unobscured Subject carried inside every envelope.
const trueSubject = "BarCorp contract signed, let's go!"

// basePosix anchors every Date header. It is rounded down to the hour so
// scenario offsets land on readable minute marks.
const basePosix int64 = 1571577491

// scenarios is the fixed table, ordered by name. One name maps to exactly
// one record; the table is read-only.
var scenarios = []Scenario{
	{Name: "pgpmime-encrypted", Encrypt: true,
		SessionKey: hexKey("9f9a4f2cbcfff1cd8e5856a18f3cbc165e8b3b3d6916ca5684393dd3bd3a7b0a"), MinuteOffset: 1, Subject: trueSubject},
	{Name: "pgpmime-layered", Encrypt: true, Sign: true, Multilayer: true,
		SessionKey: hexKey("5e67165ed1a7b32a18dd9caf53f93db02b9c0ac3a2a516df40f04b5f85df9b20"), MinuteOffset: 2, Subject: trueSubject},
	{Name: "pgpmime-sign+enc", Encrypt: true, Sign: true,
		SessionKey: hexKey("8df4b2d27d5637138ac6de46415661be0bd01ed12ecf8c1db22a33cf3ede82f2"), MinuteOffset: 3, Subject: trueSubject},
	{Name: "pgpmime-sign+enc+legacy-disp", Encrypt: true, Sign: true, Legacy: true,
		SessionKey: hexKey("95a71b0e344cce43a4dd52c5fd01deec5118290bfd0792a8a733c653a12d223e"), MinuteOffset: 4, Subject: trueSubject},
	{Name: "pgpmime-signed", Sign: true, MinuteOffset: 5, Subject: trueSubject},
	{Name: "smime-enc+legacy-disp", SMIME: true, Encrypt: true, Legacy: true,
		SessionKey: hexKey("542873a968c3b5109de8aa14c559744aa08abbbe11dc23222d0d9241a9e0df72"), MinuteOffset: 6, Subject: trueSubject},
	{Name: "smime-multipart-signed", SMIME: true, Sign: true, MinuteOffset: 7, Subject: trueSubject},
	{Name: "smime-onepart-enc", SMIME: true, Encrypt: true,
		SessionKey: hexKey("e2f07ef5a3b28b2bdf7f3d42ac9d8c66012e5a54cbe9b9f2b35a843cda4fa52a"), MinuteOffset: 8, Subject: trueSubject},
	{Name: "smime-onepart-signed", SMIME: true, Sign: true, OnePart: true, MinuteOffset: 9, Subject: trueSubject},
	{Name: "smime-sign+enc", SMIME: true, Encrypt: true, Sign: true,
		SessionKey: hexKey("93d3bd12c4f0241dfae03124d60896e2f3205e52bbdbe1b18e691cbe54b5df47"), MinuteOffset: 10, Subject: trueSubject},
	{Name: "unfortunately-complex", Encrypt: true, Sign: true, Legacy: true, Multipart: true,
		SessionKey: hexKey("1c489cfad9f3c0bf3214bf34e6da42b7f64005e59726baa1b17ffdefef1f78cb"), MinuteOffset: 11, Subject: trueSubject},
}

// LookupScenario resolves a scenario name against the fixed table. A record
// that fails its own invariants is a defect in the table itself and is
// reported as such rather than silently generated.
func LookupScenario(name string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Name != name {
			continue
		}
		if err := s.check(); err != nil {
			return Scenario{}, fmt.Errorf("scenario table defect for %q: %w", name, err)
		}
		return s, nil
	}
	return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// ScenarioNames enumerates the table in its fixed (sorted) order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	return names
}

func (s Scenario) check() error {
	if s.Encrypt != (len(s.SessionKey) > 0) {
		return fmt.Errorf("session key must be present iff encrypting")
	}
	if !s.Encrypt && !s.Sign {
		return fmt.Errorf("scenario does neither sign nor encrypt")
	}
	if s.Multilayer && (!s.Sign || !s.Encrypt) {
		return fmt.Errorf("multilayer requires both sign and encrypt")
	}
	if s.OnePart && !s.SMIME {
		return fmt.Errorf("one-part signatures are an S/MIME construct")
	}
	return nil
}

// Timestamp derives the scenario's fixed Date: base POSIX time rounded down
// to the hour, plus the per-scenario minute offset, always UTC.
func (s Scenario) Timestamp() time.Time {
	base := basePosix - basePosix%3600
	return time.Unix(base, 0).UTC().Add(time.Duration(s.MinuteOffset) * time.Minute)
}

func hexKey(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("bad session key in scenario table: %v", err))
	}
	return b
}
