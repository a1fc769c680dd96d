package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_LoadsEmbeddedTables(t *testing.T) {
	db, err := Builtin()
	require.NoError(t, err)

	assert.Len(t, db.Companies, 25)
	assert.Len(t, db.Services, 2)
	assert.Len(t, db.Names, 16)
	assert.Len(t, db.OUIs, 5)
	require.Len(t, db.Payloads, 1)

	first := db.Companies[0]
	assert.Equal(t, uint16(0x01AB), first.ID)
	assert.Equal(t, "Meta Platforms", first.Company)
	assert.Equal(t, "Ray-Ban Meta", first.Product)
	assert.True(t, first.HasCamera)
	assert.Equal(t, TierHigh, first.Tier)

	assert.Equal(t, OUI{0x7C, 0x2A, 0x9E}, db.OUIs[0].Prefix)
	assert.Equal(t, []byte("META_RB_GLASS"), db.Payloads[0].Pattern)
	assert.Equal(t, uint16(0xFD5F), db.Services[0].UUID)
}

func TestBuiltin_TiersFollowTableSections(t *testing.T) {
	db, err := Builtin()
	require.NoError(t, err)

	counts := map[Tier]int{}
	for _, c := range db.Companies {
		counts[c.Tier]++
	}
	assert.Equal(t, 5, counts[TierHigh])
	assert.Equal(t, 8, counts[TierMedium])
	assert.Equal(t, 12, counts[TierLow])
}

func TestParse_LowercasesNamePatterns(t *testing.T) {
	db, err := Parse([]byte(`
companies:
  - {id: 0x0001, company: A, product: B, tier: high}
names:
  - {pattern: "RayBan", product: "Meta Ray-Ban", camera: true}
`))
	require.NoError(t, err)
	assert.Equal(t, "rayban", db.Names[0].Pattern)
}

func TestParse_AcceptsNumericTiers(t *testing.T) {
	db, err := Parse([]byte("companies:\n  - {id: 7, company: A, product: B, tier: 2}\n"))
	require.NoError(t, err)
	assert.Equal(t, TierLow, db.Companies[0].Tier)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "no companies",
			yaml:    "services:\n  - {uuid: 0xFEAA, owner: G, description: E}\n",
			wantErr: ErrEmptyDatabase,
		},
		{
			name:    "missing tier",
			yaml:    "companies:\n  - {id: 1, company: A, product: B}\n",
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "null tier",
			yaml:    "companies:\n  - {id: 1, company: A, product: B, tier: }\n",
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "unknown tier",
			yaml:    "companies:\n  - {id: 1, company: A, product: B, tier: ultra}\n",
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "missing product",
			yaml:    "companies:\n  - {id: 1, company: A, tier: high}\n",
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "bad oui",
			yaml:    "companies:\n  - {id: 1, company: A, product: B, tier: high}\nouis:\n  - {prefix: \"7C:2A\", vendor: V}\n",
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "bad payload hex",
			yaml:    "companies:\n  - {id: 1, company: A, product: B, tier: high}\npayloads:\n  - {company_id: 1, hex: \"ZZ\", description: D}\n",
			wantErr: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("companies: [ nope"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesBuiltin(t *testing.T) {
	db, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, db.Companies)
}

func TestLoad_FileReplacesBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte("companies:\n  - {id: 0x1234, company: Acme, product: Lens, camera: true, tier: medium}\n"), 0o644))

	db, err := Load(path)
	require.NoError(t, err)
	require.Len(t, db.Companies, 1)
	assert.Equal(t, "Acme", db.Companies[0].Company)
	assert.Empty(t, db.Names)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseOUI(t *testing.T) {
	o, err := ParseOUI("98-59-49")
	require.NoError(t, err)
	assert.Equal(t, OUI{0x98, 0x59, 0x49}, o)
	assert.Equal(t, "98:59:49", o.String())

	_, err = ParseOUI("98:59:4G")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "HIGH", TierHigh.String())
	assert.Equal(t, "MEDIUM", TierMedium.String())
	assert.Equal(t, "LOW", TierLow.String())
	assert.Equal(t, "TIER(9)", Tier(9).String())
}
