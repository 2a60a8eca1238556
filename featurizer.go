package gridfeat

import (
	"fmt"
	"math/rand"

	v3 "github.com/gmolnar/gridfeat/v3"
)

//Mode selects what features a Featurizer computes. It is a closed set;
//every switch over it in this file is exhaustive.
type Mode int

const (
	//ModeECFP produces the ligand's own hashed-fragment presence vector.
	ModeECFP Mode = iota
	//ModeSPLIF produces the concatenated per-contact-bin SPLIF count vectors.
	ModeSPLIF
	//ModeFlatCombined produces one flat vector concatenating pocket/ligand
	//ECFP counts, per-bin SPLIF counts and per-class hydrogen-bond tallies.
	ModeFlatCombined
	//ModeVoxelCombined produces, per augmentation, a voxel tensor whose
	//channel axis concatenates all of the above feature classes.
	ModeVoxelCombined
)

//ParseMode returns the Mode named by s: one of "ecfp", "splif",
//"flat_combined" or "voxel_combined".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ecfp":
		return ModeECFP, nil
	case "splif":
		return ModeSPLIF, nil
	case "flat_combined":
		return ModeFlatCombined, nil
	case "voxel_combined":
		return ModeVoxelCombined, nil
	}
	err := CError{msg: fmt.Sprintf("ParseMode: unknown feature mode %q", s)}
	err.Decorate("ParseMode")
	return 0, err
}

func (m Mode) String() string {
	switch m {
	case ModeECFP:
		return "ecfp"
	case ModeSPLIF:
		return "splif"
	case ModeFlatCombined:
		return "flat_combined"
	case ModeVoxelCombined:
		return "voxel_combined"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

//AugIndex identifies one rigid-body augmentation of the complex.
//The zero value is the untransformed original.
type AugIndex struct {
	Rotation   int
	Reflection int
}

//Artifact is the numeric result of featurizing one augmentation: a flat
//vector or a voxel tensor, depending on the mode. Exactly one field is
//non-nil.
type Artifact struct {
	Vector []float64
	Tensor *Tensor
}

//ArtifactWriter persists one augmentation's artifact. The featio
//subpackage provides a directory-backed implementation.
type ArtifactWriter interface {
	WriteArtifact(key AugIndex, a *Artifact) error
}

//Options holds the configuration of a Featurizer. Fields are read and set
//through the accessor methods; NewFeaturizer validates the whole set.
type Options struct {
	mode          Mode
	ecfpDegree    int //fragment hop radius
	ecfpPower     int
	splifPower    int
	nbRotations   int
	nbReflections int
	boxWidth      float64
	voxelWidth    float64
	pocketCutoff  float64
	hbondDistBins [][2]float64
	hbondAngles   []float64
	contactBins   [][2]float64
	ligandOnly    bool
	saver         ArtifactWriter
	rng           *rand.Rand
}

//DefaultOptions returns an Options with the default configuration: ECFP
//mode, fragment radius 2, 2^3 channels for both atoms and pairs, a 16 A
//box with 1 A voxels, no augmentations, and the standard hydrogen-bond
//and contact bins.
func DefaultOptions() *Options {
	ret := new(Options)
	ret.mode = ModeECFP
	ret.ecfpDegree = 2
	ret.ecfpPower = 3
	ret.splifPower = 3
	ret.boxWidth = 16.0
	ret.voxelWidth = 1.0
	ret.pocketCutoff = 4.5
	ret.hbondDistBins = [][2]float64{{2.2, 2.5}, {2.5, 3.2}, {3.2, 4.0}}
	ret.hbondAngles = []float64{5, 50, 90}
	ret.contactBins = [][2]float64{{0, 2.0}, {2.0, 3.0}, {3.0, 4.5}}
	return ret
}

//Returns the current feature mode and sets it, if a value is given.
func (o *Options) FeatureMode(mode ...Mode) Mode {
	ret := o.mode
	if len(mode) > 0 {
		o.mode = mode[0]
	}
	return ret
}

//Returns the current fragment hop radius and sets it, if a valid value
//is given.
func (o *Options) EcfpDegree(degree ...int) int {
	ret := o.ecfpDegree
	if len(degree) > 0 && degree[0] > 0 {
		o.ecfpDegree = degree[0]
	}
	return ret
}

//Returns the current bit width of the atom-fragment channel space and
//sets it, if a valid value is given.
func (o *Options) EcfpPower(power ...int) int {
	ret := o.ecfpPower
	if len(power) > 0 && power[0] > 0 {
		o.ecfpPower = power[0]
	}
	return ret
}

//Returns the current bit width of the fragment-pair channel space and
//sets it, if a valid value is given.
func (o *Options) SplifPower(power ...int) int {
	ret := o.splifPower
	if len(power) > 0 && power[0] > 0 {
		o.splifPower = power[0]
	}
	return ret
}

//Returns the current number of rotation augmentations and sets it, if a
//valid value is given.
func (o *Options) Rotations(n ...int) int {
	ret := o.nbRotations
	if len(n) > 0 && n[0] >= 0 {
		o.nbRotations = n[0]
	}
	return ret
}

//Returns the current number of reflection augmentations per rotation and
//sets it, if a valid value is given.
func (o *Options) Reflections(n ...int) int {
	ret := o.nbReflections
	if len(n) > 0 && n[0] >= 0 {
		o.nbReflections = n[0]
	}
	return ret
}

//Returns the current voxel-grid box width, in A, and sets it, if a valid
//value is given.
func (o *Options) BoxWidth(w ...float64) float64 {
	ret := o.boxWidth
	if len(w) > 0 && w[0] > 0 {
		o.boxWidth = w[0]
	}
	return ret
}

//Returns the current voxel edge length, in A, and sets it, if a valid
//value is given.
func (o *Options) VoxelWidth(w ...float64) float64 {
	ret := o.voxelWidth
	if len(w) > 0 && w[0] > 0 {
		o.voxelWidth = w[0]
	}
	return ret
}

//Returns the current binding-pocket distance cutoff, in A, and sets it,
//if a valid value is given.
func (o *Options) PocketCutoff(c ...float64) float64 {
	ret := o.pocketCutoff
	if len(c) > 0 && c[0] > 0 {
		o.pocketCutoff = c[0]
	}
	return ret
}

//Returns the current hydrogen-bond distance bins and angle cutoffs and
//sets them, if given. The two slices run in parallel.
func (o *Options) HbondBins(bins [][2]float64, angles []float64) ([][2]float64, []float64) {
	retb, reta := o.hbondDistBins, o.hbondAngles
	if bins != nil || angles != nil {
		o.hbondDistBins = bins
		o.hbondAngles = angles
	}
	return retb, reta
}

//Returns the current SPLIF contact distance bins and sets them, if a
//value is given.
func (o *Options) ContactBins(bins ...[][2]float64) [][2]float64 {
	ret := o.contactBins
	if len(bins) > 0 {
		o.contactBins = bins[0]
	}
	return ret
}

//Returns whether the featurizer ignores the protein and only computes
//the ligand's ECFP vector, and sets it, if a value is given.
func (o *Options) LigandOnly(lo ...bool) bool {
	ret := o.ligandOnly
	if len(lo) > 0 {
		o.ligandOnly = lo[0]
	}
	return ret
}

//Returns the artifact writer used to persist each augmentation's result,
//or nil, and sets it, if a value is given.
func (o *Options) SaveIntermediates(w ...ArtifactWriter) ArtifactWriter {
	ret := o.saver
	if len(w) > 0 {
		o.saver = w[0]
	}
	return ret
}

//Returns the random source used for augmentation draws and sets it, if a
//value is given. Inject a seeded source for reproducible runs.
func (o *Options) Rand(r ...*rand.Rand) *rand.Rand {
	ret := o.rng
	if len(r) > 0 && r[0] != nil {
		o.rng = r[0]
	}
	return ret
}

//validate returns a critical error for the first invalid configuration
//value found, or nil.
func (o *Options) validate() error {
	fail := func(format string, args ...interface{}) error {
		err := CError{msg: fmt.Sprintf("Options: "+format, args...)}
		err.Decorate("NewFeaturizer")
		return err
	}
	switch o.mode {
	case ModeECFP, ModeSPLIF, ModeFlatCombined, ModeVoxelCombined:
	default:
		return fail("unknown feature mode %d", int(o.mode))
	}
	if o.ecfpDegree <= 0 {
		return fail("fragment hop radius must be positive, got %d", o.ecfpDegree)
	}
	if o.ecfpPower <= 0 || o.ecfpPower > 62 || o.splifPower <= 0 || o.splifPower > 62 {
		return fail("channel powers must lie in (0,62], got %d and %d", o.ecfpPower, o.splifPower)
	}
	if o.nbRotations < 0 || o.nbReflections < 0 {
		return fail("augmentation counts must be non-negative")
	}
	if o.boxWidth <= 0 || o.voxelWidth <= 0 {
		return fail("box and voxel widths must be positive, got %g and %g", o.boxWidth, o.voxelWidth)
	}
	if o.pocketCutoff <= 0 {
		return fail("pocket cutoff must be positive, got %g", o.pocketCutoff)
	}
	if len(o.hbondDistBins) != len(o.hbondAngles) {
		return fail("%d hydrogen-bond distance bins but %d angle cutoffs", len(o.hbondDistBins), len(o.hbondAngles))
	}
	for _, b := range o.hbondDistBins {
		if b[0] >= b[1] {
			return fail("malformed hydrogen-bond distance bin (%g,%g)", b[0], b[1])
		}
	}
	for _, b := range o.contactBins {
		if b[0] >= b[1] {
			return fail("malformed contact bin (%g,%g)", b[0], b[1])
		}
	}
	return nil
}

//Featurizer drives the featurization pipeline for one protein/ligand
//pair per Featurize call. It holds no state besides its configuration
//and random source, so distinct Featurizers can run concurrently.
type Featurizer struct {
	o   *Options
	rng *rand.Rand
}

//NewFeaturizer validates the options and returns a ready Featurizer.
//If no random source was injected, a process-seeded one is created.
func NewFeaturizer(o *Options) (*Featurizer, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Featurizer{o: o, rng: rng}, nil
}

//Featurize runs the configured pipeline on one protein/ligand pair and
//returns the artifacts keyed by augmentation index. The key (0,0) is
//always the untransformed complex. protXYZ and ligXYZ must be
//index-aligned with their structures; none of the inputs is modified.
//In ECFP or ligand-only mode the protein arguments may be nil.
func (F *Featurizer) Featurize(prot *Structure, protXYZ *v3.Matrix, lig *Structure, ligXYZ *v3.Matrix) (map[AugIndex]*Artifact, error) {
	o := F.o
	if lig == nil || ligXYZ == nil {
		err := CError{msg: "Featurize: nil ligand"}
		err.Decorate("Featurize")
		return nil, err
	}
	if o.mode == ModeECFP || o.ligandOnly {
		env, err := AtomEnvironments(lig, nil, o.ecfpDegree)
		if err != nil {
			return nil, errDecorate(err, "Featurize")
		}
		ret := map[AugIndex]*Artifact{{0, 0}: {Vector: PresenceVector(env, o.ecfpPower)}}
		return ret, F.save(ret)
	}
	if prot == nil || protXYZ == nil {
		err := CError{msg: "Featurize: nil protein in a protein-dependent mode"}
		err.Decorate("Featurize")
		return nil, err
	}
	//The ligand centroid anchors the shared coordinate frame.
	centroid := Centroid(ligXYZ)
	lxyz := Recenter(ligXYZ, centroid)
	pxyz := Recenter(protXYZ, centroid)

	switch o.mode {
	case ModeSPLIF:
		vec, err := F.splifVector(prot, pxyz, lig, lxyz)
		if err != nil {
			return nil, errDecorate(err, "Featurize")
		}
		ret := map[AugIndex]*Artifact{{0, 0}: {Vector: vec}}
		return ret, F.save(ret)
	case ModeFlatCombined:
		vec, err := F.flatVector(prot, pxyz, lig, lxyz)
		if err != nil {
			return nil, errDecorate(err, "Featurize")
		}
		ret := map[AugIndex]*Artifact{{0, 0}: {Vector: vec}}
		return ret, F.save(ret)
	case ModeVoxelCombined:
		ret, err := F.voxelArtifacts(prot, pxyz, lig, lxyz)
		if err != nil {
			return nil, errDecorate(err, "Featurize")
		}
		return ret, F.save(ret)
	}
	panic("unreachable: mode was validated at construction")
}

//save writes every artifact through the configured writer, if any.
func (F *Featurizer) save(artifacts map[AugIndex]*Artifact) error {
	if F.o.saver == nil {
		return nil
	}
	for key, a := range artifacts {
		if err := F.o.saver.WriteArtifact(key, a); err != nil {
			return err
		}
	}
	return nil
}

//splifVector concatenates the count vectors of every contact bin's
//fragment-pair map.
func (F *Featurizer) splifVector(prot *Structure, pxyz *v3.Matrix, lig *Structure, lxyz *v3.Matrix) ([]float64, error) {
	o := F.o
	D := PairwiseDistances(pxyz, lxyz)
	dicts, err := SplifFingerprints(prot, lig, D, o.contactBins, o.ecfpDegree)
	if err != nil {
		return nil, errDecorate(err, "splifVector")
	}
	vec := make([]float64, 0, len(dicts)<<uint(o.splifPower))
	for _, d := range dicts {
		vec = append(vec, VectorizePairs(d, o.splifPower)...)
	}
	return vec, nil
}

//flatVector concatenates pocket and ligand ECFP counts, per-bin SPLIF
//counts and one tally per hydrogen-bond class.
func (F *Featurizer) flatVector(prot *Structure, pxyz *v3.Matrix, lig *Structure, lxyz *v3.Matrix) ([]float64, error) {
	o := F.o
	D := PairwiseDistances(pxyz, lxyz)
	protEnv, ligEnv, err := BindingPocketEnvironments(D, o.pocketCutoff, prot, lig, o.ecfpDegree)
	if err != nil {
		return nil, errDecorate(err, "flatVector")
	}
	dicts, err := SplifFingerprints(prot, lig, D, o.contactBins, o.ecfpDegree)
	if err != nil {
		return nil, errDecorate(err, "flatVector")
	}
	hbonds := HydrogenBonds(pxyz, prot, lxyz, lig, D, o.hbondDistBins, o.hbondAngles)
	vec := make([]float64, 0)
	vec = append(vec, Vectorize(protEnv, o.ecfpPower)...)
	vec = append(vec, Vectorize(ligEnv, o.ecfpPower)...)
	for _, d := range dicts {
		vec = append(vec, VectorizePairs(d, o.splifPower)...)
	}
	for _, class := range hbonds {
		vec = append(vec, CountVector(class)...)
	}
	return vec, nil
}

//voxelArtifacts enumerates the augmentations and assembles one combined
//voxel tensor per instance. The augmentation keys are {(0,0)} plus (i,0)
//for each rotation i and (i,j) for each rotation/reflection combination;
//each reflection is drawn fresh and applied to its rotation's
//coordinates.
func (F *Featurizer) voxelArtifacts(prot *Structure, pxyz *v3.Matrix, lig *Structure, lxyz *v3.Matrix) (map[AugIndex]*Artifact, error) {
	o := F.o
	type system struct {
		prot, lig *v3.Matrix
	}
	systems := make(map[AugIndex]system)
	systems[AugIndex{0, 0}] = system{prot: pxyz, lig: lxyz}
	for i := 1; i <= o.nbRotations; i++ {
		R, err := RandomRotation(F.rng)
		if err != nil {
			return nil, errDecorate(err, "voxelArtifacts")
		}
		rot := system{prot: Rotate(pxyz, R), lig: Rotate(lxyz, R)}
		systems[AugIndex{i, 0}] = rot
		for j := 1; j <= o.nbReflections; j++ {
			axis := RandomReflection(F.rng)
			systems[AugIndex{i, j}] = system{prot: Reflect(rot.prot, axis), lig: Reflect(rot.lig, axis)}
		}
	}
	ret := make(map[AugIndex]*Artifact, len(systems))
	for key, sys := range systems {
		D := PairwiseDistances(sys.prot, sys.lig)
		protEnv, ligEnv, err := BindingPocketEnvironments(D, o.pocketCutoff, prot, lig, o.ecfpDegree)
		if err != nil {
			return nil, errDecorate(err, "voxelArtifacts")
		}
		dicts, err := SplifFingerprints(prot, lig, D, o.contactBins, o.ecfpDegree)
		if err != nil {
			return nil, errDecorate(err, "voxelArtifacts")
		}
		hbonds := HydrogenBonds(sys.prot, prot, sys.lig, lig, D, o.hbondDistBins, o.hbondAngles)
		tensors := make([]*Tensor, 0, 2+len(dicts)+len(hbonds))
		tensors = append(tensors, VoxelizeAtoms(sys.prot, protEnv, o.ecfpPower, o.boxWidth, o.voxelWidth))
		tensors = append(tensors, VoxelizeAtoms(sys.lig, ligEnv, o.ecfpPower, o.boxWidth, o.voxelWidth))
		for _, d := range dicts {
			tensors = append(tensors, VoxelizePairs(sys.prot, sys.lig, d, o.splifPower, o.boxWidth, o.voxelWidth))
		}
		for _, class := range hbonds {
			tensors = append(tensors, VoxelizeContacts(sys.prot, sys.lig, class, o.boxWidth, o.voxelWidth))
		}
		combined, err := ConcatChannels(tensors...)
		if err != nil {
			return nil, errDecorate(err, "voxelArtifacts")
		}
		ret[key] = &Artifact{Tensor: combined}
	}
	return ret, nil
}
