package gridfeat

import (
	"fmt"
	"math/rand"
	"testing"

	v3 "github.com/gmolnar/gridfeat/v3"
)

func TestParseMode(Te *testing.T) {
	names := map[string]Mode{
		"ecfp":           ModeECFP,
		"splif":          ModeSPLIF,
		"flat_combined":  ModeFlatCombined,
		"voxel_combined": ModeVoxelCombined,
	}
	for name, want := range names {
		got, err := ParseMode(name)
		if err != nil {
			Te.Error(err)
		}
		if got != want {
			Te.Errorf("ParseMode(%q) = %v", name, got)
		}
		if got.String() != name {
			Te.Errorf("Mode %v prints as %q", got, got.String())
		}
	}
	if _, err := ParseMode("voxels"); err == nil {
		Te.Error("unknown mode name accepted")
	}
}

func TestOptionsValidation(Te *testing.T) {
	bad := []func(o *Options){
		func(o *Options) { o.ecfpPower = 0 },
		func(o *Options) { o.splifPower = 63 },
		func(o *Options) { o.boxWidth = -1 },
		func(o *Options) { o.voxelWidth = 0 },
		func(o *Options) { o.hbondAngles = []float64{5, 50} },
		func(o *Options) { o.contactBins = [][2]float64{{3, 2}} },
		func(o *Options) { o.nbRotations = -1 },
	}
	for i, spoil := range bad {
		o := DefaultOptions()
		spoil(o)
		_, err := NewFeaturizer(o)
		if err == nil {
			Te.Errorf("bad option set %d accepted", i)
			continue
		}
		if !err.(Error).Critical() {
			Te.Errorf("bad option set %d yielded a non-critical error", i)
		}
	}
	//the defaults themselves must pass
	if _, err := NewFeaturizer(DefaultOptions()); err != nil {
		Te.Error(err)
	}
}

func TestOptionAccessors(Te *testing.T) {
	o := DefaultOptions()
	if o.EcfpDegree() != 2 || o.EcfpPower() != 3 || o.BoxWidth() != 16.0 {
		Te.Error("wrong defaults")
	}
	//an accessor that sets returns the value held before the set
	if o.EcfpDegree(3) != 2 || o.Rotations(5) != 0 || o.FeatureMode(ModeSPLIF) != ModeECFP {
		Te.Error("setting accessors should return the previous value")
	}
	if o.EcfpDegree() != 3 || o.Rotations() != 5 || o.FeatureMode() != ModeSPLIF {
		Te.Error("accessors did not set")
	}
	//invalid values are ignored
	o.EcfpDegree(-1)
	if o.EcfpDegree() != 3 {
		Te.Error("negative radius accepted")
	}
}

//splifSystem builds the smallest complex with real contacts: one
//protein-side acceptor oxygen 2.9 A above a ligand hydroxyl.
func splifSystem(Te *testing.T) (*Structure, *v3.Matrix, *Structure, *v3.Matrix) {
	return hbondSystem(Te, 2.9)
}

func TestFeaturizeECFP(Te *testing.T) {
	_, _, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeECFP)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	//the protein is not needed in this mode
	res, err := F.Featurize(nil, nil, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	a, ok := res[AugIndex{0, 0}]
	if len(res) != 1 || !ok {
		Te.Fatalf("wrong result keys: %v", res)
	}
	if len(a.Vector) != 8 {
		Te.Fatalf("vector length %d, want 8", len(a.Vector))
	}
	var ones, others int
	for _, v := range a.Vector {
		switch v {
		case 1:
			ones++
		case 0:
		default:
			others++
		}
	}
	fmt.Println("presence vector", a.Vector)
	if others != 0 {
		Te.Error("presence vector holds values other than 0 and 1")
	}
	if ones < 1 || ones > 2 {
		Te.Errorf("%d channels set for a 2-atom ligand", ones)
	}
}

func TestFeaturizeSPLIF(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeSPLIF)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := F.Featurize(prot, protXYZ, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	vec := res[AugIndex{0, 0}].Vector
	if len(vec) != 3*8 {
		Te.Fatalf("vector length %d, want 24", len(vec))
	}
	//O-H at 1.9 A falls in the first bin, O-O at 2.9 A in the second,
	//nothing in the third
	var sums [3]float64
	for i, v := range vec {
		sums[i/8] += v
	}
	fmt.Println("splif counts per bin", sums)
	if sums[0] != 1 || sums[1] != 1 || sums[2] != 0 {
		Te.Errorf("wrong per-bin contact counts: %v", sums)
	}
}

func TestFeaturizeFlatCombined(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeFlatCombined)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := F.Featurize(prot, protXYZ, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	vec := res[AugIndex{0, 0}].Vector
	//pocket ECFP (8) + ligand ECFP (8) + 3 SPLIF bins (24) + 3 hydrogen
	//bond tallies
	if len(vec) != 8+8+24+3 {
		Te.Fatalf("vector length %d, want 43", len(vec))
	}
	hb := vec[len(vec)-3:]
	fmt.Println("hydrogen bond tallies", hb)
	if hb[0] != 0 || hb[1] != 1 || hb[2] != 0 {
		Te.Errorf("wrong hydrogen bond tallies: %v", hb)
	}
}

func TestFeaturizeVoxelAugmentations(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeVoxelCombined)
	o.Rotations(2)
	o.Reflections(1)
	o.Rand(rand.New(rand.NewSource(1)))
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := F.Featurize(prot, protXYZ, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	want := []AugIndex{{0, 0}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}
	if len(res) != len(want) {
		Te.Fatalf("got %d augmentations, want %d", len(res), len(want))
	}
	for _, key := range want {
		a, ok := res[key]
		if !ok {
			Te.Fatalf("augmentation %v missing", key)
		}
		if a.Tensor == nil || a.Vector != nil {
			Te.Fatalf("augmentation %v did not produce a tensor", key)
		}
		if a.Tensor.G() != 32 || a.Tensor.Channels() != 8+8+24+3 {
			Te.Errorf("augmentation %v tensor shape %dx%d", key, a.Tensor.G(), a.Tensor.Channels())
		}
	}
	//rigid transforms preserve distances, so every augmentation sees the
	//same contacts, and for atoms this close to the origin also the same
	//total voxel count
	base := res[AugIndex{0, 0}].Tensor.Sum()
	for key, a := range res {
		if a.Tensor.Sum() != base {
			Te.Errorf("augmentation %v total count %g, want %g", key, a.Tensor.Sum(), base)
		}
	}
}

func TestFeaturizeLigandOnly(Te *testing.T) {
	_, _, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeVoxelCombined)
	o.LigandOnly(true)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := F.Featurize(nil, nil, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	a := res[AugIndex{0, 0}]
	if a == nil || a.Vector == nil {
		Te.Fatal("ligand-only featurization did not fall back to the ECFP vector")
	}
	if len(a.Vector) != 8 {
		Te.Errorf("vector length %d, want 8", len(a.Vector))
	}
}

//recordingWriter keeps the artifacts it is handed, for inspection.
type recordingWriter struct {
	got map[AugIndex]*Artifact
}

func (w *recordingWriter) WriteArtifact(key AugIndex, a *Artifact) error {
	w.got[key] = a
	return nil
}

func TestFeaturizeSavesIntermediates(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := splifSystem(Te)
	w := &recordingWriter{got: make(map[AugIndex]*Artifact)}
	o := DefaultOptions()
	o.FeatureMode(ModeVoxelCombined)
	o.Rotations(1)
	o.Rand(rand.New(rand.NewSource(4)))
	o.SaveIntermediates(w)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := F.Featurize(prot, protXYZ, lig, ligXYZ)
	if err != nil {
		Te.Fatal(err)
	}
	if len(w.got) != len(res) {
		Te.Fatalf("%d artifacts written, %d produced", len(w.got), len(res))
	}
	for key, a := range res {
		if w.got[key] != a {
			Te.Errorf("augmentation %v written incorrectly", key)
		}
	}
}

func TestFeaturizeNilInputs(Te *testing.T) {
	prot, protXYZ, lig, ligXYZ := splifSystem(Te)
	o := DefaultOptions()
	o.FeatureMode(ModeSPLIF)
	F, err := NewFeaturizer(o)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := F.Featurize(prot, protXYZ, nil, nil); err == nil {
		Te.Error("nil ligand accepted")
	}
	if _, err := F.Featurize(nil, nil, lig, ligXYZ); err == nil {
		Te.Error("nil protein accepted in SPLIF mode")
	}
}
