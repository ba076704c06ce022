package core

// NewAuthorityRegistry initializes the process-wide singleton (spec.md §4.2
// initialize_authority), seeding it with an initial authorized-program list.
// Grounded on original_source/.../instructions/authority.rs:6's
// `authorized_programs: Vec<Pubkey>` argument: a list longer than
// MaxAuthorizedProgram is rejected with MaxAuthorizedProgramsReached, and
// duplicates within the list are rejected the same way AddProgram would
// reject them one at a time.
func NewAuthorityRegistry(admin PubKey, bump uint8, programs []PubKey) (*AuthorityRegistry, error) {
	if len(programs) > MaxAuthorizedProgram {
		return nil, newErr(ErrKindMaxAuthorizedProgramsReached, "initial program list exceeds cap")
	}
	seen := make(map[PubKey]struct{}, len(programs))
	for _, p := range programs {
		if _, dup := seen[p]; dup {
			return nil, newErr(ErrKindProgramAlreadyAuthorized, "duplicate program in initial list")
		}
		seen[p] = struct{}{}
	}
	return &AuthorityRegistry{Admin: admin, Bump: bump, AuthorizedPrograms: cloneKeys(programs)}, nil
}

// IsAuthorized reports whether program is allowed to invoke restricted
// vault operations.
func (r *AuthorityRegistry) IsAuthorized(program PubKey) bool {
	return containsKey(r.AuthorizedPrograms, program)
}

// AddProgram implements add_authorized_program; only the admin may call
// this, enforced by the engine layer which holds the caller identity.
func (r *AuthorityRegistry) AddProgram(program PubKey) error {
	set, err := insertUnique(r.AuthorizedPrograms, program, MaxAuthorizedProgram,
		ErrKindProgramAlreadyAuthorized, ErrKindMaxAuthorizedProgramsReached)
	if err != nil {
		return err
	}
	r.AuthorizedPrograms = set
	return nil
}

// RemoveProgram implements remove_authorized_program.
func (r *AuthorityRegistry) RemoveProgram(program PubKey) error {
	set, err := removeExisting(r.AuthorizedPrograms, program, ErrKindProgramNotAuthorized)
	if err != nil {
		return err
	}
	r.AuthorizedPrograms = set
	return nil
}

// Clone deep-copies the registry, mirroring Vault.Clone's commit-on-success
// discipline.
func (r *AuthorityRegistry) Clone() *AuthorityRegistry {
	cp := *r
	cp.AuthorizedPrograms = cloneKeys(r.AuthorizedPrograms)
	return &cp
}
