/*
Package gridfeat turns a protein/ligand complex into fixed-shape numeric
features for statistical learning.

The pipeline takes the atom list, bonds and 3D coordinates of both molecules
(supplied by an external structure provider; gridfeat does no file parsing)
and produces, per rigid-body augmentation of the complex, either a flat count
vector or a dense multi-channel voxel tensor built from:

    Hashed ECFP-like fragments: for each atom, the induced substructure
    reachable within a bounded number of bond hops, encoded canonically
    and hashed into one of 2^power channels.

    SPLIF pairs: protein/ligand fragment pairs for every atom pair whose
    distance falls in a configured contact bin.

    Hydrogen bonds: donor/acceptor contacts validated geometrically by the
    acceptor-hydrogen-donor angle.

Coordinates are handled as v3.Matrix values (gonum-backed Nx3 matrices) and
every geometric transform returns a fresh matrix, so several augmentations
of the same complex can coexist. The ligand centroid is the origin of the
shared coordinate frame.

The featio subpackage writes feature artifacts compressed to disk, and
featplot renders channel-occupancy histograms.
*/
package gridfeat
