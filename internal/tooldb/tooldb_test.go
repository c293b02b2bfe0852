package tooldb

import (
	"path/filepath"
	"testing"

	"github.com/chickenmcniggels/intuicam/internal/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDatabase() *Database {
	db := NewDatabase()

	turning := NewTool("CNMG 120408", KindTurning, 12, 150)
	turning.Capabilities = []toolpath.OperationKind{
		toolpath.Facing, toolpath.ExternalRoughing, toolpath.ExternalFinishing,
	}
	db.Add(turning)

	parting := NewTool("MGMN 300", KindParting, 0, 120)
	parting.Width = 3
	parting.Capabilities = []toolpath.OperationKind{toolpath.Parting, toolpath.ExternalGrooving}
	db.Add(parting)

	drill := NewTool("HSS 6mm", KindDrill, 6, 90)
	drill.Capabilities = []toolpath.OperationKind{toolpath.Drilling}
	db.Add(drill)

	return db
}

func TestDatabase_GetAndRemove(t *testing.T) {
	db := sampleDatabase()
	id := db.Tools[0].ID

	got, err := db.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "CNMG 120408", got.Label)

	assert.True(t, db.Remove(id))
	_, err = db.Get(id)
	assert.Error(t, err)
	assert.False(t, db.Remove(id), "removing twice should fail")
}

func TestDatabase_ByCapability(t *testing.T) {
	db := sampleDatabase()

	facing := db.ByCapability(toolpath.Facing)
	require.Len(t, facing, 1)
	assert.Equal(t, "CNMG 120408", facing[0].Label)

	grooving := db.ByCapability(toolpath.ExternalGrooving)
	require.Len(t, grooving, 1)
	assert.Equal(t, "MGMN 300", grooving[0].Label)

	assert.Empty(t, db.ByCapability(toolpath.Threading))
}

func TestDatabase_FirstFor(t *testing.T) {
	db := sampleDatabase()
	tool, ok := db.FirstFor(toolpath.Drilling)
	require.True(t, ok)
	assert.Equal(t, "HSS 6mm", tool.Label)

	_, ok = db.FirstFor(toolpath.Threading)
	assert.False(t, ok)
}

func TestDatabase_SnapshotIsIndependent(t *testing.T) {
	db := sampleDatabase()
	snap := db.Snapshot()

	db.Tools[0].Label = "mutated"
	db.Tools[0].Capabilities[0] = toolpath.Parting

	assert.Equal(t, "CNMG 120408", snap[0].Label)
	assert.Equal(t, toolpath.Facing, snap[0].Capabilities[0])
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := sampleDatabase()
	path := filepath.Join(t.TempDir(), "nested", "tools.json")

	require.NoError(t, Save(path, db))
	loaded, err := Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Tools, len(db.Tools))
	assert.Equal(t, db.Tools[0].ID, loaded.Tools[0].ID)
	assert.Equal(t, db.Tools[1].Width, loaded.Tools[1].Width)
	assert.Equal(t, db.Tools[0].Capabilities, loaded.Tools[0].Capabilities)
}

func TestLoad_MissingFileYieldsEmptyLibrary(t *testing.T) {
	db, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, db.Tools)
}

func TestExportImportTool(t *testing.T) {
	tool := NewTool("VNMG 160404", KindTurning, 16, 140)
	tool.CornerRadius = 0.4
	path := filepath.Join(t.TempDir(), "tool.json")

	require.NoError(t, ExportTool(path, tool))
	got, err := ImportTool(path)
	require.NoError(t, err)
	assert.Equal(t, tool.Label, got.Label)
	assert.Equal(t, tool.CornerRadius, got.CornerRadius)
}

func TestTool_Ref(t *testing.T) {
	tool := NewTool("test", KindGrooving, 0, 100)
	tool.Width = 2.5
	ref := tool.Ref()
	assert.Equal(t, tool.ID, ref.ID)
	assert.Equal(t, 2.5, ref.Width)
}
