package linkedin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFragment = `
<ul>
<li><div class="base-card" data-entity-urn="urn:li:jobPosting:40123">
  <a class="base-card__full-link" href="https://br.linkedin.com/jobs/view/dev-at-acme-40123?refId=xyz&amp;trackingId=abc">ver vaga</a>
  <h3 class="base-search-card__title"> Desenvolvedor Backend </h3>
  <h4 class="base-search-card__subtitle"><a>Acme</a></h4>
  <span class="job-search-card__location">Brasil (Remoto)</span>
  <time class="job-search-card__listdate" datetime="2026-03-12">há 3 dias</time>
</div></li>
<li><div class="base-card" data-entity-urn="urn:li:jobPosting:bogus">
  <h3 class="base-search-card__title">Sem id numérico</h3>
</div></li>
</ul>`

func TestParseCards(t *testing.T) {
	out, err := ParseCards(strings.NewReader(sampleFragment))
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "40123", out[0].SourceKey)
	assert.Equal(t, "Desenvolvedor Backend", out[0].Title)
	assert.Equal(t, "Acme", out[0].Company)
	assert.Equal(t, "Brasil (Remoto)", out[0].Location)
	assert.Equal(t, "2026-03-12", out[0].PostedText)
}

func TestPostingID(t *testing.T) {
	assert.Equal(t, "123", postingID("urn:li:jobPosting:123"))
	assert.Equal(t, "", postingID(""))
	assert.Equal(t, "", postingID("urn:li:jobPosting:"))
	assert.Equal(t, "", postingID("urn:li:jobPosting:12a3"))
}
