package usecase

// BuildConsentURL builds the provider consent URL for state.
func (uc *implUseCase) BuildConsentURL(state string, scopes []string) string {
	if len(scopes) == 0 {
		scopes = uc.scopes
	}
	return uc.provider.AuthCodeURL(state, scopes, uc.policy.Options()...)
}
