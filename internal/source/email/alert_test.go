package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAlert = `
<html><body>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/comm/jobs/view/40123?trackingId=abc"><img src="logo.png"/></a>
    <a href="https://www.linkedin.com/comm/jobs/view/40123?trackingId=abc">Analista de Dados Jr</a>
    <p>DataCo · Remoto</p>
  </td></tr>
</table>
<table>
  <tr><td>
    <a href="https://www.linkedin.com/jobs/view/40999?refId=zz">Desenvolvedor Backend</a>
    <p>Acme Ltda · São Paulo, SP</p>
  </td></tr>
</table>
<a href="https://www.linkedin.com/jobs/view/40777">Ver vaga</a>
<a href="https://www.linkedin.com/psettings/email">Unsubscribe</a>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	raws, err := parseAlertHTML(sampleAlert)
	require.NoError(t, err)

	// 40777 only has a call-to-action anchor, never a title
	require.Len(t, raws, 2)

	assert.Equal(t, "Analista de Dados Jr", raws[0].Title)
	assert.Equal(t, "DataCo", raws[0].Company)
	assert.Equal(t, "Remoto", raws[0].Location)
	assert.Equal(t, "40123", raws[0].SourceKey)

	assert.Equal(t, "Desenvolvedor Backend", raws[1].Title)
	assert.Equal(t, "Acme Ltda", raws[1].Company)
	assert.Equal(t, "São Paulo, SP", raws[1].Location)
	assert.Equal(t, "40999", raws[1].SourceKey)
}

func TestUnwrapRedirect(t *testing.T) {
	got := unwrapRedirect("https://www.linkedin.com/comm/jobs/view/123?url=https%3A%2F%2Fwww.linkedin.com%2Fjobs%2Fview%2F123%3FtrackingId%3Dxyz")
	assert.Equal(t, "https://www.linkedin.com/jobs/view/123", got)

	got = unwrapRedirect("https://www.linkedin.com/jobs/view/456#anchor")
	assert.Equal(t, "https://www.linkedin.com/jobs/view/456", got)
}

func TestSubjectMatches(t *testing.T) {
	assert.True(t, subjectMatches("30+ novas vagas de Analista", []string{"vagas de"}))
	assert.False(t, subjectMatches("Your weekly digest", []string{"vagas de"}))
	assert.True(t, subjectMatches("anything", nil))
}
