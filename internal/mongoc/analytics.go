package mongoc

import (
	"mongocdocs/internal/builder"

	"github.com/spf13/cast"
)

// AnalyticsSnippet loads Google Analytics and the NPS survey widget.
const AnalyticsSnippet = `
<!-- Global site tag (gtag.js) - Google Analytics -->
<script async src="https://www.googletagmanager.com/gtag/js?id=UA-7301842-14"></script>
<script>
  window.dataLayer = window.dataLayer || [];
  function gtag(){dataLayer.push(arguments);}
  gtag('js', new Date());

  gtag('config', 'UA-7301842-14');
</script>
<!--  NPS survey -->
<script type="text/javascript">
  !function(e,t,r,n,a){if(!e[a]){for(var i=e[a]=[],s=0;s<r.length;s++){var c=r[s];i[c]=i[c]||function(e){return function(){var t=Array.prototype.slice.call(arguments);i.push([e,t])}}(c)}i.SNIPPET_VERSION="1.0.1";var o=t.createElement("script");o.type="text/javascript",o.async=!0,o.src="https://d2yyd1h5u9mauk.cloudfront.net/integrations/web/v1/library/"+n+"/"+a+".js";var l=t.getElementsByTagName("script")[0];l.parentNode.insertBefore(o,l)}}(window,document,["survey","reset","config","init","set","get","event","identify","track","page","screen","group","alias"],"Dk30CC86ba0nATlK","delighted");

  delighted.survey();
</script>
`

// InjectAnalytics appends AnalyticsSnippet to the page's metatags when the
// analytics value is enabled.
func InjectAnalytics(app *builder.App, page *builder.Page) error {
	if !app.Config.Bool("analytics") {
		return nil
	}
	page.Context["metatags"] = cast.ToString(page.Context["metatags"]) + AnalyticsSnippet
	return nil
}
